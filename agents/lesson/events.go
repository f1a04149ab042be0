package lesson

import "encoding/json"

// EventType tags a StreamEvent
type EventType string

const (
	EventText       EventType = "text"
	EventToolStart  EventType = "tool_start"
	EventToolResult EventType = "tool_result"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

// StreamEvent is one item of the agent's event stream. Only the fields of its Type are set.
type StreamEvent struct {
	Type         EventType
	Content      string      // text
	Name         string      // tool_start, tool_result
	ToolUseID    string      // tool_start, tool_result
	Result       *ToolResult // tool_result
	FullResponse string      // done
	Error        string      // error
}

// TextEvent carries a text delta
func TextEvent(content string) StreamEvent {
	return StreamEvent{Type: EventText, Content: content}
}

// ToolStartEvent announces a tool invocation
func ToolStartEvent(id, name string) StreamEvent {
	return StreamEvent{Type: EventToolStart, ToolUseID: id, Name: name}
}

// ToolResultEvent carries the outcome of a tool invocation
func ToolResultEvent(id, name string, result ToolResult) StreamEvent {
	return StreamEvent{Type: EventToolResult, ToolUseID: id, Name: name, Result: &result}
}

// DoneEvent ends a successful stream with the text of every turn
func DoneEvent(fullResponse string) StreamEvent {
	return StreamEvent{Type: EventDone, FullResponse: fullResponse}
}

// ErrorEvent ends a failed stream
func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Error: message}
}

// MarshalJSON writes the client wire shape of the event
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventText:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Content string    `json:"content"`
		}{e.Type, e.Content})
	case EventToolStart:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			Name string    `json:"name"`
		}{e.Type, e.Name})
	case EventToolResult:
		result := e.Result
		if result == nil {
			result = &ToolResult{}
		}
		return json.Marshal(struct {
			Type   EventType   `json:"type"`
			Result *ToolResult `json:"result"`
		}{e.Type, result})
	case EventDone:
		return json.Marshal(struct {
			Type         EventType `json:"type"`
			FullResponse string    `json:"fullResponse"`
		}{e.Type, e.FullResponse})
	default:
		return json.Marshal(struct {
			Type  EventType `json:"type"`
			Error string    `json:"error"`
		}{EventError, e.Error})
	}
}
