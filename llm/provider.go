package llm

import (
	"context"
	"encoding/json"
)

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content block kinds
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// Stop reasons reported in message_delta chunks
const (
	StopEndTurn   = "end_turn"
	StopToolUse   = "tool_use"
	StopMaxTokens = "max_tokens"
)

// ContentBlock is one piece of a message: text, a tool invocation, or a tool result
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use: ID/Name/Input. tool_result: ToolUseID/Content.
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

// Message is one conversation turn sent to or received from a provider
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
	Usage   *Usage         `json:"-"`
}

// Usage reports token counts for a completed turn
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// TextMessage builds a single-text-block message
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{{Type: BlockText, Text: text}}}
}

// Text concatenates the message's text blocks
func (m Message) Text() string {
	var out string
	for _, block := range m.Content {
		if block.Type == BlockText {
			out += block.Text
		}
	}
	return out
}

// ToolDefinition describes a callable tool with a JSON schema for its input
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// StreamRequest is everything a provider needs to open one streaming turn
type StreamRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	MaxTokens    int
}

// ChunkType classifies incremental stream output
type ChunkType string

const (
	ChunkContentBlockStart ChunkType = "content_block_start"
	ChunkContentBlockDelta ChunkType = "content_block_delta"
	ChunkContentBlockStop  ChunkType = "content_block_stop"
	ChunkMessageDelta      ChunkType = "message_delta"
	ChunkMessageStop       ChunkType = "message_stop"
)

// StreamChunk is one normalized stream event.
//
// content_block_start sets Index and Block (Type text or tool_use; ID and Name for tool_use).
// content_block_delta sets Index and either TextDelta or PartialJSON.
// content_block_stop sets Index. message_delta sets StopReason.
type StreamChunk struct {
	Type        ChunkType
	Index       int
	Block       *ContentBlock
	TextDelta   string
	PartialJSON string
	StopReason  string
}

// CompletionStream is a pull-based stream of chunks for one model turn.
// FinalMessage is valid once Next has returned false without error.
type CompletionStream interface {
	Next() bool
	Current() StreamChunk
	Err() error
	FinalMessage() Message
	Close() error
}

// Provider opens streaming turns against a generative model
type Provider interface {
	Name() string
	StreamMessage(ctx context.Context, request *StreamRequest) (CompletionStream, error)
}
