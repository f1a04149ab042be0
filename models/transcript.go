package models

import "time"

// Chat roles stored in a lesson transcript
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolCallSummary records the outcome of one tool call on an assistant message
type ToolCallSummary struct {
	Success bool   `json:"success"`
	BlockID string `json:"blockId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ChatMessage is one entry of a lesson's chat transcript
type ChatMessage struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"createdAt"`
	ToolCalls []ToolCallSummary `json:"toolCalls,omitempty"`
}
