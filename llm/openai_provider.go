package llm

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"
)

const (
	// Provider name
	providerNameOpenAI = "openai"

	// Chat Completions finish reasons
	openaiFinishToolCalls = "tool_calls"
	openaiFinishLength    = "length"

	// Text is always reported on block 0; tool call i is reported on block i+1
	openaiTextBlockIndex = 0
)

// OpenAIProvider implements the Provider interface using OpenAI's Chat Completions API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, opts ...option.RequestOption) *OpenAIProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// StreamMessage opens one streaming turn. Tool calls and text are re-shaped into the
// block-indexed chunk protocol shared by every provider.
func (p *OpenAIProvider) StreamMessage(ctx context.Context, request *StreamRequest) (CompletionStream, error) {
	params := p.buildRequestParams(request)
	log.Printf("📤 OpenAI stream request (model: %s, messages: %d, tools: %d)",
		request.Model, len(params.Messages), len(params.Tools))

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai stream failed: %w", err)
	}
	return &openaiStream{
		chunkBuffer: newChunkBuffer(),
		stream:      stream,
		toolBlocks:  map[int64]int{},
	}, nil
}

// buildRequestParams converts a StreamRequest into Chat Completions params
func (p *OpenAIProvider) buildRequestParams(request *StreamRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(request.SystemPrompt))
	}
	for _, msg := range request.Messages {
		messages = append(messages, toOpenAIMessages(msg)...)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(request.Model),
		Messages: messages,
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if request.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(request.MaxTokens))
	}
	for _, tool := range request.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  shared.FunctionParameters(tool.InputSchema),
			},
		})
	}
	return params
}

// toOpenAIMessages maps one block-structured message onto Chat Completions messages.
// A user turn carrying tool results becomes one tool message per result.
func toOpenAIMessages(msg Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	text := msg.Text()

	if msg.Role == RoleAssistant {
		asst := openai.ChatCompletionAssistantMessageParam{}
		if text != "" {
			asst.Content.OfString = openai.String(text)
		}
		for _, block := range msg.Content {
			if block.Type != BlockToolUse {
				continue
			}
			args := string(block.Input)
			if args == "" {
				args = "{}"
			}
			asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: block.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      block.Name,
					Arguments: args,
				},
			})
		}
		return append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
	}

	for _, block := range msg.Content {
		if block.Type == BlockToolResult {
			out = append(out, openai.ToolMessage(block.Content, block.ToolUseID))
		}
	}
	if text != "" {
		out = append(out, openai.UserMessage(text))
	}
	return out
}

type openaiStream struct {
	chunkBuffer
	stream *ssestream.Stream[openai.ChatCompletionChunk]

	textOpen   bool
	toolBlocks map[int64]int
	finished   bool
	done       bool
}

func (s *openaiStream) Next() bool {
	for {
		if s.pop() {
			return true
		}
		if s.done {
			return false
		}
		if !s.stream.Next() {
			if s.stream.Err() != nil {
				s.done = true
				return false
			}
			if !s.finished {
				s.finish(StopEndTurn)
			}
			s.push(StreamChunk{Type: ChunkMessageStop})
			s.done = true
			continue
		}
		s.translate(s.stream.Current())
	}
}

func (s *openaiStream) translate(chunk openai.ChatCompletionChunk) {
	if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
		s.usage.InputTokens = int(chunk.Usage.PromptTokens)
		s.usage.OutputTokens = int(chunk.Usage.CompletionTokens)
	}
	if len(chunk.Choices) == 0 {
		return
	}
	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		if !s.textOpen {
			s.textOpen = true
			s.push(StreamChunk{
				Type:  ChunkContentBlockStart,
				Index: openaiTextBlockIndex,
				Block: &ContentBlock{Type: BlockText},
			})
		}
		s.push(StreamChunk{Type: ChunkContentBlockDelta, Index: openaiTextBlockIndex, TextDelta: choice.Delta.Content})
	}

	for _, call := range choice.Delta.ToolCalls {
		blockIndex, open := s.toolBlocks[call.Index]
		if !open {
			blockIndex = int(call.Index) + 1
			s.toolBlocks[call.Index] = blockIndex
			s.push(StreamChunk{
				Type:  ChunkContentBlockStart,
				Index: blockIndex,
				Block: &ContentBlock{Type: BlockToolUse, ID: call.ID, Name: call.Function.Name},
			})
		}
		if call.Function.Arguments != "" {
			s.push(StreamChunk{Type: ChunkContentBlockDelta, Index: blockIndex, PartialJSON: call.Function.Arguments})
		}
	}

	if choice.FinishReason != "" && !s.finished {
		s.finish(mapOpenAIFinishReason(choice.FinishReason))
	}
}

// finish closes every open block in index order and reports the stop reason
func (s *openaiStream) finish(stopReason string) {
	s.finished = true
	var open []int
	if s.textOpen {
		open = append(open, openaiTextBlockIndex)
	}
	for _, idx := range s.toolBlocks {
		open = append(open, idx)
	}
	sort.Ints(open)
	for _, idx := range open {
		s.push(StreamChunk{Type: ChunkContentBlockStop, Index: idx})
	}
	s.push(StreamChunk{Type: ChunkMessageDelta, StopReason: stopReason})
}

func mapOpenAIFinishReason(reason string) string {
	switch reason {
	case openaiFinishToolCalls:
		return StopToolUse
	case openaiFinishLength:
		return StopMaxTokens
	default:
		return StopEndTurn
	}
}

func (s *openaiStream) Current() StreamChunk {
	return s.current
}

func (s *openaiStream) Err() error {
	return s.stream.Err()
}

func (s *openaiStream) FinalMessage() Message {
	return s.message()
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}
