package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

func outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// PrometheusMetrics holds the lesson service counters. A nil *PrometheusMetrics
// records nothing.
type PrometheusMetrics struct {
	toolCalls      *prometheus.CounterVec
	agentTurns     prometheus.Counter
	plannerActions *prometheus.CounterVec
	streamDuration prometheus.Histogram
}

// NewPrometheusMetrics registers the lesson metrics on reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lesson_tool_calls_total",
			Help: "Tool calls executed by the lesson agent by tool and outcome",
		}, []string{"tool", "outcome"}),
		agentTurns: factory.NewCounter(prometheus.CounterOpts{
			Name: "lesson_agent_turns_total",
			Help: "Model turns opened by the lesson agent",
		}),
		plannerActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lesson_planner_actions_total",
			Help: "Planner operations by action and outcome",
		}, []string{"action", "outcome"}),
		streamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lesson_agent_stream_duration_seconds",
			Help:    "Wall-clock duration of one agent stream",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2m
		}),
	}
}

// ToolCall counts one executed tool call
func (m *PrometheusMetrics) ToolCall(tool string, success bool) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome(success)).Inc()
}

// AgentTurn counts one model turn
func (m *PrometheusMetrics) AgentTurn() {
	if m == nil {
		return
	}
	m.agentTurns.Inc()
}

// PlannerAction counts one planner operation
func (m *PrometheusMetrics) PlannerAction(action string, success bool) {
	if m == nil {
		return
	}
	m.plannerActions.WithLabelValues(action, outcome(success)).Inc()
}

// StreamDuration observes the duration of one agent stream
func (m *PrometheusMetrics) StreamDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.streamDuration.Observe(d.Seconds())
}
