package llm

import (
	"encoding/json"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func drain(b *chunkBuffer) []StreamChunk {
	var chunks []StreamChunk
	for b.pop() {
		chunks = append(chunks, b.current)
	}
	return chunks
}

func decodeOpenAIChunks(t *testing.T, raw ...string) []openai.ChatCompletionChunk {
	t.Helper()
	chunks := make([]openai.ChatCompletionChunk, len(raw))
	for i, r := range raw {
		require.NoError(t, json.Unmarshal([]byte(r), &chunks[i]))
	}
	return chunks
}

func TestOpenAIStreamTranslate(t *testing.T) {
	const header = `"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"gpt-4o"`

	tests := []struct {
		name   string
		raw    []string
		expect []StreamChunk
		final  Message
	}{
		{
			name: "text then split tool calls",
			raw: []string{
				`{` + header + `,"choices":[{"index":0,"delta":{"role":"assistant","content":"Sure"}}]}`,
				`{` + header + `,"choices":[{"index":0,"delta":{"tool_calls":[` +
					`{"index":0,"id":"call_a","type":"function","function":{"name":"lookup_chord_voicing","arguments":"{\"root\":"}}]}}]}`,
				`{` + header + `,"choices":[{"index":0,"delta":{"tool_calls":[` +
					`{"index":0,"function":{"arguments":"\"G\"}"}},` +
					`{"index":1,"id":"call_b","type":"function","function":{"name":"generate_scale_diagram","arguments":"{}"}}]}}]}`,
				`{` + header + `,"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
				`{` + header + `,"choices":[],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`,
			},
			expect: []StreamChunk{
				{Type: ChunkContentBlockStart, Index: 0, Block: &ContentBlock{Type: BlockText}},
				{Type: ChunkContentBlockDelta, Index: 0, TextDelta: "Sure"},
				{Type: ChunkContentBlockStart, Index: 1, Block: &ContentBlock{Type: BlockToolUse, ID: "call_a", Name: "lookup_chord_voicing"}},
				{Type: ChunkContentBlockDelta, Index: 1, PartialJSON: `{"root":`},
				{Type: ChunkContentBlockDelta, Index: 1, PartialJSON: `"G"}`},
				{Type: ChunkContentBlockStart, Index: 2, Block: &ContentBlock{Type: BlockToolUse, ID: "call_b", Name: "generate_scale_diagram"}},
				{Type: ChunkContentBlockDelta, Index: 2, PartialJSON: `{}`},
				{Type: ChunkContentBlockStop, Index: 0},
				{Type: ChunkContentBlockStop, Index: 1},
				{Type: ChunkContentBlockStop, Index: 2},
				{Type: ChunkMessageDelta, StopReason: StopToolUse},
			},
			final: Message{
				Role: RoleAssistant,
				Content: []ContentBlock{
					{Type: BlockText, Text: "Sure"},
					{Type: BlockToolUse, ID: "call_a", Name: "lookup_chord_voicing", Input: json.RawMessage(`{"root":"G"}`)},
					{Type: BlockToolUse, ID: "call_b", Name: "generate_scale_diagram", Input: json.RawMessage(`{}`)},
				},
				Usage: &Usage{InputTokens: 3, OutputTokens: 4},
			},
		},
		{
			name: "text only",
			raw: []string{
				`{` + header + `,"choices":[{"index":0,"delta":{"content":"Hello "}}]}`,
				`{` + header + `,"choices":[{"index":0,"delta":{"content":"there"},"finish_reason":"stop"}]}`,
			},
			expect: []StreamChunk{
				{Type: ChunkContentBlockStart, Index: 0, Block: &ContentBlock{Type: BlockText}},
				{Type: ChunkContentBlockDelta, Index: 0, TextDelta: "Hello "},
				{Type: ChunkContentBlockDelta, Index: 0, TextDelta: "there"},
				{Type: ChunkContentBlockStop, Index: 0},
				{Type: ChunkMessageDelta, StopReason: StopEndTurn},
			},
			final: Message{
				Role:    RoleAssistant,
				Content: []ContentBlock{{Type: BlockText, Text: "Hello there"}},
				Usage:   &Usage{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &openaiStream{chunkBuffer: newChunkBuffer(), toolBlocks: map[int64]int{}}
			for _, chunk := range decodeOpenAIChunks(t, tt.raw...) {
				s.translate(chunk)
			}

			assert.Equal(t, tt.expect, drain(&s.chunkBuffer))
			assert.Equal(t, tt.final, s.FinalMessage())
		})
	}
}

// scriptedGemini replays responses through the same pull function the SDK iterator provides
func scriptedGemini(responses ...*genai.GenerateContentResponse) *geminiStream {
	i := 0
	next := func() (*genai.GenerateContentResponse, error, bool) {
		if i >= len(responses) {
			return nil, nil, false
		}
		resp := responses[i]
		i++
		return resp, nil, true
	}
	return &geminiStream{chunkBuffer: newChunkBuffer(), next: next, stop: func() {}}
}

func geminiParts(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}}},
	}
}

func collect(t *testing.T, s CompletionStream) []StreamChunk {
	t.Helper()
	var chunks []StreamChunk
	for s.Next() {
		chunks = append(chunks, s.Current())
	}
	require.NoError(t, s.Err())
	return chunks
}

func TestGeminiStreamTranslate(t *testing.T) {
	usage := geminiParts(&genai.Part{Text: "you go"}, &genai.Part{FunctionCall: &genai.FunctionCall{Name: "generate_scale_diagram"}})
	usage.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 5, CandidatesTokenCount: 6}

	s := scriptedGemini(
		geminiParts(&genai.Part{Text: "Here "}),
		geminiParts(&genai.Part{FunctionCall: &genai.FunctionCall{
			ID:   "fc-1",
			Name: "lookup_chord_voicing",
			Args: map[string]any{"root": "G"},
		}}),
		usage,
	)

	assert.Equal(t, []StreamChunk{
		{Type: ChunkContentBlockStart, Index: 0, Block: &ContentBlock{Type: BlockText}},
		{Type: ChunkContentBlockDelta, Index: 0, TextDelta: "Here "},
		{Type: ChunkContentBlockStart, Index: 1, Block: &ContentBlock{Type: BlockToolUse, ID: "fc-1", Name: "lookup_chord_voicing"}},
		{Type: ChunkContentBlockDelta, Index: 1, PartialJSON: `{"root":"G"}`},
		{Type: ChunkContentBlockStop, Index: 1},
		{Type: ChunkContentBlockDelta, Index: 0, TextDelta: "you go"},
		{Type: ChunkContentBlockStart, Index: 2, Block: &ContentBlock{Type: BlockToolUse, ID: "call_2", Name: "generate_scale_diagram"}},
		{Type: ChunkContentBlockDelta, Index: 2, PartialJSON: `{}`},
		{Type: ChunkContentBlockStop, Index: 2},
		{Type: ChunkContentBlockStop, Index: 0},
		{Type: ChunkMessageDelta, StopReason: StopToolUse},
		{Type: ChunkMessageStop},
	}, collect(t, s))

	assert.Equal(t, Message{
		Role: RoleAssistant,
		Content: []ContentBlock{
			{Type: BlockText, Text: "Here you go"},
			{Type: BlockToolUse, ID: "fc-1", Name: "lookup_chord_voicing", Input: json.RawMessage(`{"root":"G"}`)},
			{Type: BlockToolUse, ID: "call_2", Name: "generate_scale_diagram", Input: json.RawMessage(`{}`)},
		},
		Usage: &Usage{InputTokens: 5, OutputTokens: 6},
	}, s.FinalMessage())
}

func TestGeminiStreamLateTextKeepsBlockZero(t *testing.T) {
	s := scriptedGemini(
		geminiParts(&genai.Part{FunctionCall: &genai.FunctionCall{ID: "fc-1", Name: "lookup_chord_voicing", Args: map[string]any{}}}),
		geminiParts(
			&genai.Part{Text: "thinking", Thought: true},
			&genai.Part{Text: "Done."},
			&genai.Part{FunctionCall: &genai.FunctionCall{ID: "fc-2", Name: "create_text_block"}},
		),
	)

	chunks := collect(t, s)
	require.Len(t, chunks, 11)
	assert.Equal(t, StreamChunk{Type: ChunkContentBlockStart, Index: 1, Block: &ContentBlock{Type: BlockToolUse, ID: "fc-1", Name: "lookup_chord_voicing"}}, chunks[0])
	assert.Equal(t, StreamChunk{Type: ChunkContentBlockStart, Index: 0, Block: &ContentBlock{Type: BlockText}}, chunks[3])
	assert.Equal(t, StreamChunk{Type: ChunkContentBlockDelta, Index: 0, TextDelta: "Done."}, chunks[4])
	assert.Equal(t, StreamChunk{Type: ChunkContentBlockStart, Index: 2, Block: &ContentBlock{Type: BlockToolUse, ID: "fc-2", Name: "create_text_block"}}, chunks[5])

	final := s.FinalMessage()
	require.Len(t, final.Content, 3)
	assert.Equal(t, BlockText, final.Content[0].Type)
	assert.Equal(t, "Done.", final.Content[0].Text)
	assert.Equal(t, "fc-1", final.Content[1].ID)
	assert.Equal(t, "fc-2", final.Content[2].ID)
}

func TestGeminiStreamMaxTokens(t *testing.T) {
	resp := geminiParts(&genai.Part{Text: "cut"})
	resp.Candidates[0].FinishReason = genai.FinishReasonMaxTokens

	chunks := collect(t, scriptedGemini(resp))

	require.NotEmpty(t, chunks)
	assert.Equal(t, StreamChunk{Type: ChunkMessageDelta, StopReason: StopMaxTokens}, chunks[len(chunks)-2])
	assert.Equal(t, ChunkMessageStop, chunks[len(chunks)-1].Type)
}
