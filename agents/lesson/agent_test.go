package lesson

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/lesson-agents-go/config"
	"github.com/Conceptual-Machines/lesson-agents-go/llm"
	"github.com/Conceptual-Machines/lesson-agents-go/llm/llmtest"
	"github.com/Conceptual-Machines/lesson-agents-go/metrics"
	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(provider llm.Provider, maxTurns int) *LessonAgent {
	cfg := config.Default()
	cfg.MaxTurns = maxTurns
	return NewLessonAgent(cfg, provider, WithExecutor(newTestExecutor()))
}

func userHistory(text string) []llm.Message {
	return []llm.Message{llm.TextMessage(llm.RoleUser, text)}
}

func collect(agent *LessonAgent, history []llm.Message) []StreamEvent {
	var events []StreamEvent
	for event := range agent.Stream(context.Background(), history) {
		events = append(events, event)
	}
	return events
}

func eventTypes(events []StreamEvent) []EventType {
	types := make([]EventType, len(events))
	for i, event := range events {
		types[i] = event.Type
	}
	return types
}

func decodeFeedback(t *testing.T, block llm.ContentBlock) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(block.Content), &out))
	return out
}

func TestStreamRunsToolsThenStops(t *testing.T) {
	provider := llmtest.NewScriptedProvider(
		llmtest.Turn{
			Text: "Adding notes. ",
			ToolCalls: []llmtest.ToolCall{
				llmtest.ToolUse("toolu_1", ToolAddTextBlock, map[string]any{"content": "Keep your thumb low."}),
				llmtest.ToolUse("toolu_2", ToolLookupChordVoicing, map[string]any{"root": "C", "quality": "maj"}),
			},
		},
		llmtest.Turn{Text: "All set."},
	)
	agent := newTestAgent(provider, 10)

	events := collect(agent, userHistory("Teach me C"))

	assert.Equal(t, []EventType{
		EventText,
		EventToolStart, EventToolResult,
		EventToolStart, EventToolResult,
		EventText,
		EventDone,
	}, eventTypes(events))
	assert.Equal(t, ToolAddTextBlock, events[1].Name)
	assert.True(t, events[2].Result.Success)
	assert.Equal(t, "Adding notes. All set.", events[len(events)-1].FullResponse)

	requests := provider.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, 0, provider.Remaining())
	assert.Equal(t, 2, provider.Closed())

	first := requests[0]
	assert.Equal(t, config.DefaultModel, first.Model)
	assert.Equal(t, config.DefaultMaxTokens, first.MaxTokens)
	assert.Len(t, first.Tools, len(ToolDefinitions()))
	assert.Contains(t, first.SystemPrompt, "You suggest. The planner decides.")
	require.Len(t, first.Messages, 1)

	second := requests[1].Messages
	require.Len(t, second, 3)
	assistant := second[1]
	assert.Equal(t, llm.RoleAssistant, assistant.Role)
	require.Len(t, assistant.Content, 3)
	assert.Equal(t, "Adding notes. ", assistant.Content[0].Text)
	assert.Equal(t, "toolu_1", assistant.Content[1].ID)
	assert.JSONEq(t, `{"content":"Keep your thumb low."}`, string(assistant.Content[1].Input))

	results := second[2]
	assert.Equal(t, llm.RoleUser, results.Role)
	require.Len(t, results.Content, 2)
	assert.Equal(t, llm.BlockToolResult, results.Content[0].Type)
	assert.Equal(t, "toolu_1", results.Content[0].ToolUseID)
	assert.JSONEq(t, `{"success":true,"blockId":"id-1"}`, results.Content[0].Content)

	lookup := decodeFeedback(t, results.Content[1])
	assert.Equal(t, "toolu_2", results.Content[1].ToolUseID)
	assert.Equal(t, true, lookup["success"])
	assert.NotNil(t, lookup["data"])
}

func TestStreamToolResultCountMatchesToolCalls(t *testing.T) {
	for _, n := range []int{1, 3, 5} {
		calls := make([]llmtest.ToolCall, n)
		for i := range calls {
			calls[i] = llmtest.ToolUse("toolu", ToolAddTextBlock, map[string]any{"content": "step"})
		}
		provider := llmtest.NewScriptedProvider(llmtest.Turn{ToolCalls: calls}, llmtest.Turn{Text: "Done."})

		events := collect(newTestAgent(provider, 10), userHistory("go"))

		results := 0
		for _, event := range events {
			if event.Type == EventToolResult {
				results++
			}
		}
		assert.Equal(t, n, results)
		assert.Equal(t, EventDone, events[len(events)-1].Type)
		assert.Len(t, provider.Requests(), 2)
	}
}

func TestStreamMalformedToolInput(t *testing.T) {
	provider := llmtest.NewScriptedProvider(
		llmtest.Turn{ToolCalls: []llmtest.ToolCall{{ID: "toolu_bad", Name: ToolAddTextBlock, Input: `{"content":`}}},
		llmtest.Turn{Text: "Let me try again."},
	)

	events := collect(newTestAgent(provider, 10), userHistory("add a note"))

	require.Equal(t, []EventType{EventToolStart, EventToolResult, EventText, EventDone}, eventTypes(events))
	result := events[1].Result
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Failed to parse tool input")

	second := provider.Requests()[1].Messages
	require.Len(t, second, 3)
	require.Len(t, second[1].Content, 1)
	assert.JSONEq(t, `{}`, string(second[1].Content[0].Input))

	feedback := decodeFeedback(t, second[2].Content[0])
	assert.Equal(t, false, feedback["success"])
	assert.Contains(t, feedback["error"], "Failed to parse tool input")
}

func TestStreamTurnLimit(t *testing.T) {
	toolTurn := llmtest.Turn{ToolCalls: []llmtest.ToolCall{
		llmtest.ToolUse("toolu", ToolAddTextBlock, map[string]any{"content": "again"}),
	}}
	provider := llmtest.NewScriptedProvider(toolTurn, toolTurn, toolTurn)

	events := collect(newTestAgent(provider, 2), userHistory("loop forever"))

	assert.Len(t, provider.Requests(), 2)
	assert.Equal(t, 1, provider.Remaining())
	assert.Equal(t, EventDone, events[len(events)-1].Type)
}

func TestStreamServiceFaults(t *testing.T) {
	tests := []struct {
		name         string
		turns        []llmtest.Turn
		expectTypes  []EventType
		expectError  string
		expectClosed int
	}{
		{
			name:         "open fails",
			turns:        []llmtest.Turn{{OpenErr: errors.New("401 unauthorized")}},
			expectTypes:  []EventType{EventError},
			expectError:  "401 unauthorized",
			expectClosed: 0,
		},
		{
			name:         "stream fails after text",
			turns:        []llmtest.Turn{{Text: "Partial", StreamErr: errors.New("connection reset")}},
			expectTypes:  []EventType{EventText, EventError},
			expectError:  "connection reset",
			expectClosed: 1,
		},
		{
			name: "second turn fails",
			turns: []llmtest.Turn{
				{ToolCalls: []llmtest.ToolCall{llmtest.ToolUse("toolu", ToolAddTextBlock, map[string]any{"content": "x"})}},
				{OpenErr: errors.New("overloaded")},
			},
			expectTypes:  []EventType{EventToolStart, EventToolResult, EventError},
			expectError:  "overloaded",
			expectClosed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := llmtest.NewScriptedProvider(tt.turns...)

			events := collect(newTestAgent(provider, 10), userHistory("hi"))

			assert.Equal(t, tt.expectTypes, eventTypes(events))
			assert.Contains(t, events[len(events)-1].Error, tt.expectError)
			assert.Equal(t, tt.expectClosed, provider.Closed())
		})
	}
}

func TestStreamStopsWhenConsumerBreaks(t *testing.T) {
	provider := llmtest.NewScriptedProvider(
		llmtest.Turn{
			Text: "Working",
			ToolCalls: []llmtest.ToolCall{
				llmtest.ToolUse("toolu_1", ToolAddTextBlock, map[string]any{"content": "a"}),
			},
		},
		llmtest.Turn{Text: "never requested"},
	)
	agent := newTestAgent(provider, 10)

	var seen []EventType
	for event := range agent.Stream(context.Background(), userHistory("hi")) {
		seen = append(seen, event.Type)
		if event.Type == EventToolStart {
			break
		}
	}

	assert.Equal(t, []EventType{EventText, EventToolStart}, seen)
	assert.Equal(t, 1, provider.Closed())
	assert.Len(t, provider.Requests(), 1)
	assert.Equal(t, 1, provider.Remaining())
}

func TestStreamRecordsPrometheusCounters(t *testing.T) {
	provider := llmtest.NewScriptedProvider(
		llmtest.Turn{ToolCalls: []llmtest.ToolCall{
			llmtest.ToolUse("toolu_1", ToolAddTextBlock, map[string]any{"content": "a"}),
			{ID: "toolu_2", Name: ToolAddTextBlock, Input: `nope`},
		}},
		llmtest.Turn{Text: "ok"},
	)
	reg := prometheus.NewRegistry()
	cfg := config.Default()
	agent := NewLessonAgent(cfg, provider, WithExecutor(newTestExecutor()), WithPrometheus(metrics.NewPrometheusMetrics(reg)))

	collect(agent, userHistory("hi"))

	count, err := testutil.GatherAndCount(reg, "lesson_tool_calls_total", "lesson_agent_turns_total")
	require.NoError(t, err)
	// success and failure series for add_text_block plus the turn counter
	assert.Equal(t, 3, count)
}

func TestStreamBucketsUnknownToolNames(t *testing.T) {
	provider := llmtest.NewScriptedProvider(
		llmtest.Turn{ToolCalls: []llmtest.ToolCall{
			llmtest.ToolUse("toolu_1", "draw_tab", map[string]any{}),
			llmtest.ToolUse("toolu_2", "play_audio", map[string]any{}),
			llmtest.ToolUse("toolu_3", ToolAddTextBlock, map[string]any{"content": "a"}),
		}},
		llmtest.Turn{Text: "ok"},
	)
	reg := prometheus.NewRegistry()
	agent := NewLessonAgent(config.Default(), provider, WithExecutor(newTestExecutor()), WithPrometheus(metrics.NewPrometheusMetrics(reg)))

	collect(agent, userHistory("hi"))

	expected := `
# HELP lesson_tool_calls_total Tool calls executed by the lesson agent by tool and outcome
# TYPE lesson_tool_calls_total counter
lesson_tool_calls_total{outcome="failure",tool="unknown"} 2
lesson_tool_calls_total{outcome="success",tool="add_text_block"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "lesson_tool_calls_total"))
}

func TestWithSystemPrompt(t *testing.T) {
	provider := llmtest.NewScriptedProvider(llmtest.Turn{Text: "ok"})
	agent := NewLessonAgent(config.Default(), provider, WithSystemPrompt("Only answer about ukulele chords."))

	collect(agent, userHistory("hi"))

	requests := provider.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "Only answer about ukulele chords.", requests[0].SystemPrompt)
}

func TestIntervalEnumMatchesValidator(t *testing.T) {
	labels := intervalEnum()
	assert.Len(t, labels, len(models.IntervalSemitones))
	for _, label := range labels {
		assert.True(t, models.IsValidInterval(label), label)
	}
	assert.Equal(t, "R", labels[0])
	assert.Equal(t, "7", labels[len(labels)-1])
}

func TestChat(t *testing.T) {
	t.Run("collects results", func(t *testing.T) {
		provider := llmtest.NewScriptedProvider(
			llmtest.Turn{Text: "Here: ", ToolCalls: []llmtest.ToolCall{
				llmtest.ToolUse("toolu_1", ToolEmbedVideo, map[string]any{"videoId": "abc"}),
			}},
			llmtest.Turn{Text: "enjoy."},
		)

		result, err := newTestAgent(provider, 10).Chat(context.Background(), userHistory("video please"))
		require.NoError(t, err)
		assert.Equal(t, "Here: enjoy.", result.Response)
		require.Len(t, result.ToolResults, 1)
		assert.True(t, result.ToolResults[0].Success)
	})

	t.Run("service fault is an error", func(t *testing.T) {
		provider := llmtest.NewScriptedProvider(llmtest.Turn{OpenErr: errors.New("boom")})

		_, err := newTestAgent(provider, 10).Chat(context.Background(), userHistory("hi"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestStreamEventJSON(t *testing.T) {
	tests := []struct {
		name     string
		event    StreamEvent
		expected string
	}{
		{name: "text", event: TextEvent("hi"), expected: `{"type":"text","content":"hi"}`},
		{name: "tool start", event: ToolStartEvent("toolu_1", "add_text_block"), expected: `{"type":"tool_start","name":"add_text_block"}`},
		{name: "failed result", event: ToolResultEvent("toolu_1", "x", failure("bad")), expected: `{"type":"tool_result","result":{"success":false,"error":"bad"}}`},
		{name: "done keeps empty response", event: DoneEvent(""), expected: `{"type":"done","fullResponse":""}`},
		{name: "error", event: ErrorEvent("boom"), expected: `{"type":"error","error":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(raw))
		})
	}
}
