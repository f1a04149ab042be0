package llm

import (
	"encoding/json"
	"sort"
	"strings"
)

// Accumulator assembles the final assistant message from a sequence of stream chunks
type Accumulator struct {
	blocks  map[int]*ContentBlock
	text    map[int]*strings.Builder
	partial map[int]*strings.Builder
	usage   Usage
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		blocks:  map[int]*ContentBlock{},
		text:    map[int]*strings.Builder{},
		partial: map[int]*strings.Builder{},
	}
}

// AddChunk records one chunk
func (a *Accumulator) AddChunk(chunk StreamChunk) {
	switch chunk.Type {
	case ChunkContentBlockStart:
		if chunk.Block == nil {
			return
		}
		block := *chunk.Block
		a.blocks[chunk.Index] = &block
		a.text[chunk.Index] = &strings.Builder{}
		a.text[chunk.Index].WriteString(block.Text)
		a.partial[chunk.Index] = &strings.Builder{}
	case ChunkContentBlockDelta:
		if chunk.TextDelta != "" {
			if sb, ok := a.text[chunk.Index]; ok {
				sb.WriteString(chunk.TextDelta)
			}
		}
		if chunk.PartialJSON != "" {
			if sb, ok := a.partial[chunk.Index]; ok {
				sb.WriteString(chunk.PartialJSON)
			}
		}
	}
}

// SetUsage records token counts reported outside the chunk protocol
func (a *Accumulator) SetUsage(usage Usage) {
	a.usage = usage
}

// Message returns the assembled assistant message in block index order.
// Empty text blocks are dropped and tool inputs that are not valid JSON become {}.
func (a *Accumulator) Message() Message {
	indexes := make([]int, 0, len(a.blocks))
	for i := range a.blocks {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	msg := Message{Role: RoleAssistant, Content: make([]ContentBlock, 0, len(indexes))}
	for _, i := range indexes {
		block := *a.blocks[i]
		switch block.Type {
		case BlockText:
			block.Text = a.text[i].String()
			if block.Text == "" {
				continue
			}
		case BlockToolUse:
			block.Input = NormalizeToolInput(a.partial[i].String())
		}
		msg.Content = append(msg.Content, block)
	}
	usage := a.usage
	msg.Usage = &usage
	return msg
}

// NormalizeToolInput returns raw when it is a JSON document, or {} otherwise
func NormalizeToolInput(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(trimmed)
}

// chunkBuffer queues normalized chunks translated from upstream events and feeds
// each one to the accumulator as it is handed out. Provider streams embed it.
type chunkBuffer struct {
	pending []StreamChunk
	current StreamChunk
	acc     *Accumulator
	usage   Usage
}

func newChunkBuffer() chunkBuffer {
	return chunkBuffer{acc: NewAccumulator()}
}

func (b *chunkBuffer) push(chunks ...StreamChunk) {
	b.pending = append(b.pending, chunks...)
}

// pop advances to the next queued chunk
func (b *chunkBuffer) pop() bool {
	if len(b.pending) == 0 {
		return false
	}
	b.current = b.pending[0]
	b.pending = b.pending[1:]
	b.acc.AddChunk(b.current)
	return true
}

func (b *chunkBuffer) message() Message {
	b.acc.SetUsage(b.usage)
	return b.acc.Message()
}
