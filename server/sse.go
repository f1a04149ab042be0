package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Conceptual-Machines/lesson-agents-go/agents/lesson"
	"github.com/gin-gonic/gin"
)

const sseDone = "[DONE]"

// SetSSEHeaders marks the response as an unbuffered event stream
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// sseWriter frames agent events as "data: <json>\n\n". Headers are written with the
// first frame so a request that fails before streaming can still answer with JSON.
type sseWriter struct {
	w       gin.ResponseWriter
	started bool
}

func newSSEWriter(w gin.ResponseWriter) *sseWriter {
	return &sseWriter{w: w}
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	SetSSEHeaders(s.w)
	s.w.WriteHeader(http.StatusOK)
	s.started = true
}

func (s *sseWriter) writeData(data []byte) error {
	s.start()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE frame: %w", err)
	}
	s.w.Flush()
	return nil
}

// WriteEvent sends one agent event
func (s *sseWriter) WriteEvent(event lesson.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	return s.writeData(data)
}

// WriteDone sends the end-of-stream sentinel
func (s *sseWriter) WriteDone() error {
	return s.writeData([]byte(sseDone))
}
