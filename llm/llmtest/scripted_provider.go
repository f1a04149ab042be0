// Package llmtest provides a scripted llm.Provider for driving the agent loop in tests.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Conceptual-Machines/lesson-agents-go/llm"
)

// ToolCall is one scripted tool invocation. Input is sent verbatim, so it may be
// empty or malformed JSON.
type ToolCall struct {
	ID    string
	Name  string
	Input string
}

// Turn is one scripted model response
type Turn struct {
	Text      string
	ToolCalls []ToolCall
	// StopReason defaults to tool_use when ToolCalls is non-empty, end_turn otherwise
	StopReason string

	// OpenErr fails StreamMessage; StreamErr fails the stream after its chunks are delivered
	OpenErr   error
	StreamErr error
}

// ToolUse is a convenience constructor for a tool call with a JSON-encoded input
func ToolUse(id, name string, input any) ToolCall {
	raw, err := json.Marshal(input)
	if err != nil {
		panic(fmt.Sprintf("llmtest: marshal tool input: %v", err))
	}
	return ToolCall{ID: id, Name: name, Input: string(raw)}
}

// ScriptedProvider replays turns in order and records every request it receives
type ScriptedProvider struct {
	mu       sync.Mutex
	turns    []Turn
	requests []llm.StreamRequest
	closed   int
}

// NewScriptedProvider creates a provider that replays turns
func NewScriptedProvider(turns ...Turn) *ScriptedProvider {
	return &ScriptedProvider{turns: turns}
}

// Name returns the provider name
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// StreamMessage returns the next scripted turn. Running out of turns is an error.
func (p *ScriptedProvider) StreamMessage(ctx context.Context, request *llm.StreamRequest) (llm.CompletionStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := *request
	snapshot.Messages = append([]llm.Message(nil), request.Messages...)
	p.requests = append(p.requests, snapshot)

	if len(p.turns) == 0 {
		return nil, fmt.Errorf("scripted provider: no turns left (request %d)", len(p.requests))
	}
	turn := p.turns[0]
	p.turns = p.turns[1:]
	if turn.OpenErr != nil {
		return nil, turn.OpenErr
	}
	return &scriptedStream{
		ctx:    ctx,
		chunks: turn.chunks(),
		err:    turn.StreamErr,
		acc:    llm.NewAccumulator(),
		onClose: func() {
			p.mu.Lock()
			p.closed++
			p.mu.Unlock()
		},
	}, nil
}

// Requests returns a copy of every request received so far
func (p *ScriptedProvider) Requests() []llm.StreamRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.StreamRequest(nil), p.requests...)
}

// Remaining reports how many scripted turns have not been consumed
func (p *ScriptedProvider) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.turns)
}

// Closed reports how many streams were closed
func (p *ScriptedProvider) Closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// chunks lays the turn out the way the Messages API does: text first, then one block
// per tool call with its input split across two deltas.
func (t Turn) chunks() []llm.StreamChunk {
	var out []llm.StreamChunk
	index := 0
	if t.Text != "" {
		out = append(out,
			llm.StreamChunk{Type: llm.ChunkContentBlockStart, Index: index, Block: &llm.ContentBlock{Type: llm.BlockText}},
			llm.StreamChunk{Type: llm.ChunkContentBlockDelta, Index: index, TextDelta: t.Text},
			llm.StreamChunk{Type: llm.ChunkContentBlockStop, Index: index},
		)
		index++
	}
	for _, call := range t.ToolCalls {
		out = append(out, llm.StreamChunk{
			Type:  llm.ChunkContentBlockStart,
			Index: index,
			Block: &llm.ContentBlock{Type: llm.BlockToolUse, ID: call.ID, Name: call.Name},
		})
		half := len(call.Input) / 2
		for _, part := range []string{call.Input[:half], call.Input[half:]} {
			if part != "" {
				out = append(out, llm.StreamChunk{Type: llm.ChunkContentBlockDelta, Index: index, PartialJSON: part})
			}
		}
		out = append(out, llm.StreamChunk{Type: llm.ChunkContentBlockStop, Index: index})
		index++
	}

	stopReason := t.StopReason
	if stopReason == "" {
		stopReason = llm.StopEndTurn
		if len(t.ToolCalls) > 0 {
			stopReason = llm.StopToolUse
		}
	}
	return append(out,
		llm.StreamChunk{Type: llm.ChunkMessageDelta, StopReason: stopReason},
		llm.StreamChunk{Type: llm.ChunkMessageStop},
	)
}

type scriptedStream struct {
	ctx     context.Context
	chunks  []llm.StreamChunk
	current llm.StreamChunk
	err     error
	failed  bool
	acc     *llm.Accumulator
	onClose func()
	closed  bool
}

func (s *scriptedStream) Next() bool {
	if err := s.ctx.Err(); err != nil {
		s.err = err
		s.failed = true
		return false
	}
	if len(s.chunks) == 0 {
		s.failed = s.err != nil
		return false
	}
	s.current = s.chunks[0]
	s.chunks = s.chunks[1:]
	s.acc.AddChunk(s.current)
	return true
}

func (s *scriptedStream) Current() llm.StreamChunk {
	return s.current
}

func (s *scriptedStream) Err() error {
	if !s.failed {
		return nil
	}
	return s.err
}

func (s *scriptedStream) FinalMessage() llm.Message {
	return s.acc.Message()
}

func (s *scriptedStream) Close() error {
	if !s.closed {
		s.closed = true
		s.onClose()
	}
	return nil
}
