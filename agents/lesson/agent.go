package lesson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/lesson-agents-go/config"
	"github.com/Conceptual-Machines/lesson-agents-go/llm"
	"github.com/Conceptual-Machines/lesson-agents-go/metrics"
	"github.com/Conceptual-Machines/lesson-agents-go/prompt"
	"github.com/getsentry/sentry-go"
)

// errConsumerStopped ends a turn when the caller stops ranging over the stream
var errConsumerStopped = errors.New("consumer stopped")

// unknownToolLabel is the metric label for tool names outside ToolDefinitions
const unknownToolLabel = "unknown"

var knownTools = func() map[string]bool {
	known := map[string]bool{}
	for _, tool := range ToolDefinitions() {
		known[tool.Name] = true
	}
	return known
}()

// toolMetricLabel keeps the tool label set bounded when the model invents names
func toolMetricLabel(name string) string {
	if knownTools[name] {
		return name
	}
	return unknownToolLabel
}

// LessonAgent runs the tool-calling conversation that turns chat into lesson blocks
type LessonAgent struct {
	provider     llm.Provider
	executor     ToolExecutor
	systemPrompt string
	tools        []llm.ToolDefinition
	model        string
	maxTokens    int
	maxTurns     int
	sentry       *metrics.SentryMetrics
	prom         *metrics.PrometheusMetrics
}

// AgentOption customizes a LessonAgent
type AgentOption func(*LessonAgent)

// WithExecutor replaces the default LessonToolExecutor
func WithExecutor(executor ToolExecutor) AgentOption {
	return func(a *LessonAgent) {
		a.executor = executor
	}
}

// WithPrometheus records tool and turn counters on m
func WithPrometheus(m *metrics.PrometheusMetrics) AgentOption {
	return func(a *LessonAgent) {
		a.prom = m
	}
}

// WithSystemPrompt overrides the lesson system prompt
func WithSystemPrompt(systemPrompt string) AgentOption {
	return func(a *LessonAgent) {
		a.systemPrompt = systemPrompt
	}
}

// NewLessonAgent creates a lesson agent that talks to provider
func NewLessonAgent(cfg *config.Config, provider llm.Provider, opts ...AgentOption) *LessonAgent {
	a := &LessonAgent{
		provider:     provider,
		executor:     NewLessonToolExecutor(),
		systemPrompt: prompt.NewLessonPromptBuilder().BuildPrompt(),
		tools:        ToolDefinitions(),
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		maxTurns:     cfg.MaxTurns,
		sentry:       metrics.NewSentryMetrics(),
	}
	if a.maxTokens <= 0 {
		a.maxTokens = config.DefaultMaxTokens
	}
	if a.maxTurns <= 0 {
		a.maxTurns = config.DefaultMaxTurns
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type pendingToolUse struct {
	id    string
	name  string
	input strings.Builder
}

// agentRun is the state of one Stream call
type agentRun struct {
	messages     []llm.Message
	fullResponse strings.Builder
}

// Stream runs the agent over history, which must end with the new user message.
// Turns repeat while the model calls tools, up to the configured turn cap.
// The sequence ends with exactly one done or error event unless the caller stops early,
// in which case the open completion stream is closed.
func (a *LessonAgent) Stream(ctx context.Context, history []llm.Message) iter.Seq[StreamEvent] {
	return func(yield func(StreamEvent) bool) {
		start := time.Now()
		transaction := sentry.StartTransaction(ctx, "lesson.agent_stream")
		transaction.SetTag("provider", a.provider.Name())
		transaction.SetTag("model", a.model)
		defer transaction.Finish()
		ctx := transaction.Context()

		run := &agentRun{messages: append([]llm.Message(nil), history...)}
		success := false
		defer func() {
			elapsed := time.Since(start)
			a.prom.StreamDuration(elapsed)
			a.sentry.RecordStreamDuration(ctx, elapsed, success)
		}()

		for turn := 1; ; turn++ {
			if turn > a.maxTurns {
				log.Printf("⚠️ Lesson agent reached the %d turn limit, finishing without another model call", a.maxTurns)
				break
			}

			toolResults, err := a.runTurn(ctx, turn, run, yield)
			if errors.Is(err, errConsumerStopped) {
				log.Printf("⚠️ Lesson agent stream abandoned by caller during turn %d", turn)
				return
			}
			if err != nil {
				log.Printf("❌ Lesson agent turn %d failed: %v", turn, err)
				sentry.CaptureException(err)
				transaction.Status = sentry.SpanStatusInternalError
				yield(ErrorEvent(err.Error()))
				return
			}
			if toolResults == 0 {
				break
			}
		}

		success = true
		transaction.Status = sentry.SpanStatusOK
		log.Printf("✅ Lesson agent finished in %s", time.Since(start).Round(time.Millisecond))
		yield(DoneEvent(run.fullResponse.String()))
	}
}

// runTurn streams one model turn and returns how many tool results it produced.
// When any were produced the assistant message and its tool results are appended to run.messages.
func (a *LessonAgent) runTurn(ctx context.Context, turn int, run *agentRun, yield func(StreamEvent) bool) (int, error) {
	span := sentry.StartSpan(ctx, "lesson.model_turn")
	span.SetData("turn", turn)
	defer span.Finish()

	a.prom.AgentTurn()
	log.Printf("🎸 Lesson agent turn %d (%d messages)", turn, len(run.messages))

	stream, err := a.provider.StreamMessage(span.Context(), &llm.StreamRequest{
		Model:        a.model,
		SystemPrompt: a.systemPrompt,
		Messages:     run.messages,
		Tools:        a.tools,
		MaxTokens:    a.maxTokens,
	})
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return 0, fmt.Errorf("failed to open completion stream: %w", err)
	}
	defer stream.Close()

	pending := make(map[int]*pendingToolUse)
	var feedback []llm.ContentBlock

	for stream.Next() {
		chunk := stream.Current()
		switch chunk.Type {
		case llm.ChunkContentBlockStart:
			if chunk.Block == nil || chunk.Block.Type != llm.BlockToolUse {
				continue
			}
			pending[chunk.Index] = &pendingToolUse{id: chunk.Block.ID, name: chunk.Block.Name}
			if !yield(ToolStartEvent(chunk.Block.ID, chunk.Block.Name)) {
				return 0, errConsumerStopped
			}

		case llm.ChunkContentBlockDelta:
			if chunk.TextDelta != "" {
				run.fullResponse.WriteString(chunk.TextDelta)
				if !yield(TextEvent(chunk.TextDelta)) {
					return 0, errConsumerStopped
				}
			}
			if call, ok := pending[chunk.Index]; ok {
				call.input.WriteString(chunk.PartialJSON)
			}

		case llm.ChunkContentBlockStop:
			call, ok := pending[chunk.Index]
			if !ok {
				continue
			}
			delete(pending, chunk.Index)

			result := a.executeTool(span.Context(), call)
			feedback = append(feedback, llm.ContentBlock{
				Type:      llm.BlockToolResult,
				ToolUseID: call.id,
				Content:   feedbackContent(result),
			})
			if !yield(ToolResultEvent(call.id, call.name, result)) {
				return 0, errConsumerStopped
			}

		case llm.ChunkMessageDelta:
			if chunk.StopReason == llm.StopMaxTokens {
				log.Printf("⚠️ Turn %d stopped at the %d token limit", turn, a.maxTokens)
			}
		}
	}
	if err := stream.Err(); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return 0, fmt.Errorf("completion stream failed: %w", err)
	}

	final := stream.FinalMessage()
	if final.Usage != nil {
		log.Printf("📊 Turn %d usage: %d input, %d output tokens", turn, final.Usage.InputTokens, final.Usage.OutputTokens)
		a.sentry.RecordTokenUsage(ctx, a.model, final.Usage.InputTokens, final.Usage.OutputTokens)
	}
	span.Status = sentry.SpanStatusOK

	if len(feedback) == 0 {
		return 0, nil
	}

	run.messages = append(run.messages,
		llm.Message{Role: llm.RoleAssistant, Content: final.Content},
		llm.Message{Role: llm.RoleUser, Content: feedback},
	)
	return len(feedback), nil
}

// executeTool parses the accumulated arguments and runs the call. A parse failure
// becomes a failed result without reaching the executor.
func (a *LessonAgent) executeTool(ctx context.Context, call *pendingToolUse) ToolResult {
	span := sentry.StartSpan(ctx, "lesson.tool_call")
	span.SetTag("tool", call.name)
	defer span.Finish()

	log.Printf("🔧 Executing tool %s (%s)", call.name, call.id)

	var result ToolResult
	input, err := ParseToolInput(call.input.String())
	if err != nil {
		result = parseFailure(err)
	} else {
		result = a.executor.Execute(span.Context(), ToolCall{ID: call.id, Name: call.name, Input: input})
	}

	if result.Success {
		log.Printf("✅ Tool %s succeeded", call.name)
		span.Status = sentry.SpanStatusOK
	} else {
		log.Printf("❌ Tool %s failed: %s", call.name, result.Error)
		span.Status = sentry.SpanStatusInvalidArgument
	}
	a.prom.ToolCall(toolMetricLabel(call.name), result.Success)
	a.sentry.RecordToolResult(call.name, result.Success, result.Error)
	return result
}

// feedbackContent serializes a tool result for the model
func feedbackContent(result ToolResult) string {
	var payload any
	switch {
	case !result.Success:
		payload = struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{false, result.Error}
	case result.Block != nil:
		payload = struct {
			Success bool   `json:"success"`
			BlockID string `json:"blockId"`
		}{true, result.Block.Meta().ID}
	default:
		payload = struct {
			Success bool `json:"success"`
			Data    any  `json:"data"`
		}{true, result.Data}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return `{"success":false,"error":"failed to encode tool result"}`
	}
	return string(raw)
}

// ChatResult is the collected outcome of a non-streaming Chat call
type ChatResult struct {
	Response    string       `json:"response"`
	ToolResults []ToolResult `json:"toolResults"`
}

// Chat runs Stream to completion and collects its text and tool results
func (a *LessonAgent) Chat(ctx context.Context, history []llm.Message) (*ChatResult, error) {
	result := &ChatResult{ToolResults: []ToolResult{}}
	for event := range a.Stream(ctx, history) {
		switch event.Type {
		case EventToolResult:
			result.ToolResults = append(result.ToolResults, *event.Result)
		case EventDone:
			result.Response = event.FullResponse
		case EventError:
			return nil, errors.New(event.Error)
		}
	}
	return result, nil
}
