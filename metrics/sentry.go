package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics records lesson agent metrics on Sentry transactions and spans
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // No-op spans when Sentry is not initialized
	}
}

// RecordTokenUsage records the token counts of one model turn
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens int) {
	if m == nil || !m.enabled {
		return
	}
	totalTokens := inputTokens + outputTokens

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", model)
		transaction.SetData("llm.input_tokens", inputTokens)
		transaction.SetData("llm.output_tokens", outputTokens)
		transaction.SetData("llm.total_tokens", totalTokens)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("model", model)
	span.SetTag("total_tokens", fmt.Sprintf("%d", totalTokens))
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", model)
}

// RecordToolResult leaves a breadcrumb for one executed tool call
func (m *SentryMetrics) RecordToolResult(tool string, success bool, detail string) {
	if m == nil || !m.enabled {
		return
	}

	level := sentry.LevelInfo
	if !success {
		level = sentry.LevelWarning
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "tool",
		Message:  fmt.Sprintf("%s success=%t %s", tool, success, detail),
		Level:    level,
	})
}

// RecordStreamDuration records how long one agent stream took end to end
func (m *SentryMetrics) RecordStreamDuration(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "lesson.stream_duration")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Agent Stream: %t", success)
}
