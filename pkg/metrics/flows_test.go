package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFlowMetricsCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewFlowMetrics(reg)

	m.IncAttempt("native")
	m.IncAttempt("native")
	m.IncFallback("native", "not_switched")
	m.IncApproval("wallet_capture")
	m.ObserveAttemptDuration("native", 120*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.attempts.WithLabelValues("native")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fallbacks.WithLabelValues("native", "not_switched")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.approvals.WithLabelValues("wallet_capture")))
}

func TestFlowMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *FlowMetrics
	m.IncAttempt("native")
	m.IncFallback("", "")
	m.IncApproval("")
	m.ObserveAttemptDuration("native", time.Second)

	empty := NewFlowMetrics(nil)
	empty.IncAttempt("native")
}
