package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log"

	"google.golang.org/genai"
)

const providerNameGemini = "gemini"

// GeminiProvider implements the Provider interface using the Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// StreamMessage opens one streaming turn. Gemini delivers function calls whole, so each
// call is reported as a start, a single input delta and a stop.
func (p *GeminiProvider) StreamMessage(ctx context.Context, request *StreamRequest) (CompletionStream, error) {
	contents, err := toGeminiContents(request.Messages)
	if err != nil {
		return nil, err
	}
	log.Printf("📤 Gemini stream request (model: %s, contents: %d, tools: %d)",
		request.Model, len(contents), len(request.Tools))

	next, stop := iter.Pull2(p.client.Models.GenerateContentStream(ctx, request.Model, contents, buildGeminiConfig(request)))
	return &geminiStream{
		chunkBuffer: newChunkBuffer(),
		next:        next,
		stop:        stop,
	}, nil
}

func buildGeminiConfig(request *StreamRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(request.MaxTokens),
	}
	if request.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemPrompt, genai.RoleUser)
	}
	if len(request.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(request.Tools))
		for _, tool := range request.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 tool.Name,
				Description:          tool.Description,
				ParametersJsonSchema: tool.InputSchema,
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return config
}

// toGeminiContents maps block-structured history onto Gemini contents. Function
// responses need the function name, which is recovered from the matching tool_use block.
func toGeminiContents(messages []Message) ([]*genai.Content, error) {
	toolNames := map[string]string{}
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		var parts []*genai.Part
		for _, block := range msg.Content {
			switch block.Type {
			case BlockText:
				if block.Text != "" {
					parts = append(parts, &genai.Part{Text: block.Text})
				}
			case BlockToolUse:
				args := map[string]any{}
				if len(block.Input) > 0 {
					if err := json.Unmarshal(block.Input, &args); err != nil {
						return nil, fmt.Errorf("tool_use %s has non-object input: %w", block.ID, err)
					}
				}
				toolNames[block.ID] = block.Name
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   block.ID,
					Name: block.Name,
					Args: args,
				}})
			case BlockToolResult:
				response := map[string]any{}
				if err := json.Unmarshal([]byte(block.Content), &response); err != nil {
					response = map[string]any{"output": block.Content}
				}
				part := genai.NewPartFromFunctionResponse(toolNames[block.ToolUseID], response)
				part.FunctionResponse.ID = block.ToolUseID
				parts = append(parts, part)
			}
		}
		if len(parts) == 0 {
			continue
		}

		content := genai.NewContentFromParts(parts, genai.RoleUser)
		if msg.Role == RoleAssistant {
			content = genai.NewContentFromParts(parts, genai.RoleModel)
		}
		contents = append(contents, content)
	}
	return contents, nil
}

type geminiStream struct {
	chunkBuffer
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()

	textOpen   bool
	nextIndex  int
	toolCalls  int
	stopReason string
	done       bool
	err        error
}

func (s *geminiStream) Next() bool {
	for {
		if s.pop() {
			return true
		}
		if s.done || s.err != nil {
			return false
		}
		resp, err, ok := s.next()
		if !ok {
			s.finish()
			continue
		}
		if err != nil {
			s.err = fmt.Errorf("gemini stream failed: %w", err)
			continue
		}
		s.translate(resp)
	}
}

func (s *geminiStream) translate(resp *genai.GenerateContentResponse) {
	if resp.UsageMetadata != nil {
		s.usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		s.usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	if len(resp.Candidates) == 0 {
		return
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		s.stopReason = StopMaxTokens
	}
	if candidate.Content == nil {
		return
	}

	for _, part := range candidate.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			s.pushFunctionCall(part.FunctionCall)
		case part.Text != "" && !part.Thought:
			if !s.textOpen {
				s.textOpen = true
				s.push(StreamChunk{Type: ChunkContentBlockStart, Index: 0, Block: &ContentBlock{Type: BlockText}})
				if s.nextIndex == 0 {
					s.nextIndex = 1
				}
			}
			s.push(StreamChunk{Type: ChunkContentBlockDelta, Index: 0, TextDelta: part.Text})
		}
	}
}

func (s *geminiStream) pushFunctionCall(call *genai.FunctionCall) {
	s.toolCalls++
	if s.nextIndex == 0 {
		// block 0 is reserved for text even when it arrives after a call
		s.nextIndex = 1
	}
	index := s.nextIndex
	s.nextIndex++

	id := call.ID
	if id == "" {
		id = fmt.Sprintf("call_%d", index)
	}
	args, err := json.Marshal(call.Args)
	if err != nil || call.Args == nil {
		args = []byte("{}")
	}
	s.push(
		StreamChunk{Type: ChunkContentBlockStart, Index: index, Block: &ContentBlock{Type: BlockToolUse, ID: id, Name: call.Name}},
		StreamChunk{Type: ChunkContentBlockDelta, Index: index, PartialJSON: string(args)},
		StreamChunk{Type: ChunkContentBlockStop, Index: index},
	)
}

func (s *geminiStream) finish() {
	s.done = true
	if s.textOpen {
		s.push(StreamChunk{Type: ChunkContentBlockStop, Index: 0})
	}
	stopReason := StopEndTurn
	switch {
	case s.toolCalls > 0:
		stopReason = StopToolUse
	case s.stopReason != "":
		stopReason = s.stopReason
	}
	s.push(
		StreamChunk{Type: ChunkMessageDelta, StopReason: stopReason},
		StreamChunk{Type: ChunkMessageStop},
	)
}

func (s *geminiStream) Current() StreamChunk {
	return s.current
}

func (s *geminiStream) Err() error {
	return s.err
}

func (s *geminiStream) FinalMessage() Message {
	return s.message()
}

func (s *geminiStream) Close() error {
	s.stop()
	return nil
}
