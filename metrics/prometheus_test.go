package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.ToolCall("add_text_block", true)
	m.ToolCall("add_text_block", true)
	m.ToolCall("lookup_chord_voicing", false)
	m.AgentTurn()
	m.PlannerAction("add_block", false)
	m.StreamDuration(time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("add_text_block", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("lookup_chord_voicing", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.agentTurns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.plannerActions.WithLabelValues("add_block", OutcomeFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.streamDuration))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var p *PrometheusMetrics
	var s *SentryMetrics
	assert.NotPanics(t, func() {
		p.ToolCall("x", true)
		p.AgentTurn()
		p.PlannerAction("x", true)
		p.StreamDuration(time.Millisecond)
		s.RecordToolResult("x", true, "")
	})
}
