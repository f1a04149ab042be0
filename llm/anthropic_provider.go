package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const (
	anthropicAPIVersion     = "2023-06-01"
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1/messages"

	providerNameAnthropic = "anthropic"

	// SSE lines carrying large tool inputs can exceed bufio's default token size
	maxSSELineBytes = 4 * 1024 * 1024

	maxErrorBodyBytes = 2048
)

type anthropicRequest struct {
	Model      string               `json:"model"`
	System     string               `json:"system,omitempty"`
	Messages   []Message            `json:"messages"`
	MaxTokens  int                  `json:"max_tokens"`
	Tools      []ToolDefinition     `json:"tools,omitempty"`
	ToolChoice *anthropicToolChoice `json:"tool_choice,omitempty"`
	Stream     bool                 `json:"stream"`
}

type anthropicToolChoice struct {
	Type string `json:"type"`
}

// anthropicEvent covers every SSE payload of the Messages streaming API
type anthropicEvent struct {
	Type         string `json:"type"`
	Index        int    `json:"index"`
	ContentBlock *struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
		Text string `json:"text"`
	} `json:"content_block"`
	Delta *struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
		StopReason  string `json:"stop_reason"`
	} `json:"delta"`
	Message *struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
	Usage *struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicProvider streams turns from the Anthropic Messages API over raw HTTP
type AnthropicProvider struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// AnthropicOption customizes an AnthropicProvider
type AnthropicOption func(*AnthropicProvider)

// WithAnthropicBaseURL points the provider at a different messages endpoint
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(p *AnthropicProvider) {
		p.baseURL = url
	}
}

// WithAnthropicHTTPClient replaces the default HTTP client
func WithAnthropicHTTPClient(client *http.Client) AnthropicOption {
	return func(p *AnthropicProvider) {
		p.httpClient = client
	}
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey string, opts ...AnthropicOption) *AnthropicProvider {
	p := &AnthropicProvider{
		// No client timeout: streams stay open for the whole turn and are bounded by ctx
		httpClient: &http.Client{},
		apiKey:     apiKey,
		baseURL:    defaultAnthropicBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return providerNameAnthropic
}

// StreamMessage opens one streaming turn
func (p *AnthropicProvider) StreamMessage(ctx context.Context, request *StreamRequest) (CompletionStream, error) {
	payload := anthropicRequest{
		Model:     request.Model,
		System:    request.SystemPrompt,
		Messages:  request.Messages,
		MaxTokens: request.MaxTokens,
		Tools:     request.Tools,
		Stream:    true,
	}
	if len(request.Tools) > 0 {
		payload.ToolChoice = &anthropicToolChoice{Type: "auto"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "text/event-stream")

	log.Printf("📤 Anthropic stream request (model: %s, messages: %d, tools: %d)",
		request.Model, len(request.Messages), len(request.Tools))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(errBody))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineBytes)
	return &anthropicStream{
		chunkBuffer: newChunkBuffer(),
		body:        resp.Body,
		scanner:     scanner,
	}, nil
}

type anthropicStream struct {
	chunkBuffer
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
	err     error
}

func (s *anthropicStream) Next() bool {
	for {
		if s.pop() {
			return true
		}
		if s.done || s.err != nil {
			return false
		}
		s.readEvent()
	}
}

// readEvent consumes lines until one data payload has been translated, or the body ends
func (s *anthropicStream) readEvent() {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var event anthropicEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			s.err = fmt.Errorf("failed to decode stream event: %w", err)
			return
		}
		s.translate(event)
		return
	}
	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("stream read failed: %w", err)
		return
	}
	s.done = true
}

func (s *anthropicStream) translate(event anthropicEvent) {
	switch event.Type {
	case "message_start":
		if event.Message != nil {
			s.usage.InputTokens = event.Message.Usage.InputTokens
		}
	case "content_block_start":
		if event.ContentBlock == nil {
			return
		}
		s.push(StreamChunk{
			Type:  ChunkContentBlockStart,
			Index: event.Index,
			Block: &ContentBlock{
				Type: event.ContentBlock.Type,
				ID:   event.ContentBlock.ID,
				Name: event.ContentBlock.Name,
				Text: event.ContentBlock.Text,
			},
		})
	case "content_block_delta":
		if event.Delta == nil {
			return
		}
		switch event.Delta.Type {
		case "text_delta":
			s.push(StreamChunk{Type: ChunkContentBlockDelta, Index: event.Index, TextDelta: event.Delta.Text})
		case "input_json_delta":
			s.push(StreamChunk{Type: ChunkContentBlockDelta, Index: event.Index, PartialJSON: event.Delta.PartialJSON})
		}
	case "content_block_stop":
		s.push(StreamChunk{Type: ChunkContentBlockStop, Index: event.Index})
	case "message_delta":
		if event.Usage != nil {
			s.usage.OutputTokens = event.Usage.OutputTokens
		}
		if event.Delta != nil {
			s.push(StreamChunk{Type: ChunkMessageDelta, StopReason: event.Delta.StopReason})
		}
	case "message_stop":
		s.push(StreamChunk{Type: ChunkMessageStop})
		s.done = true
	case "error":
		if event.Error != nil {
			s.err = fmt.Errorf("anthropic stream error: %s - %s", event.Error.Type, event.Error.Message)
		} else {
			s.err = errors.New("anthropic stream error")
		}
	}
}

func (s *anthropicStream) Current() StreamChunk {
	return s.current
}

func (s *anthropicStream) Err() error {
	return s.err
}

func (s *anthropicStream) FinalMessage() Message {
	return s.message()
}

func (s *anthropicStream) Close() error {
	return s.body.Close()
}
