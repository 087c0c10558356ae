package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FlowMetrics records attempt outcomes per payment flow.
type FlowMetrics struct {
	attempts  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	approvals *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewFlowMetrics registers the flow metrics on the provided registerer.
func NewFlowMetrics(reg prometheus.Registerer) *FlowMetrics {
	if reg == nil {
		return &FlowMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_flow_attempts",
		Help: "Payment attempts started per flow.",
	}, []string{"flow"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_flow_fallbacks",
		Help: "Transitions into the web checkout fallback.",
	}, []string{"flow", "reason"})
	approvals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_flow_approvals",
		Help: "Orders approved without falling back.",
	}, []string{"flow"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_flow_attempt_duration_seconds",
		Help:    "Duration of a payment attempt in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})
	reg.MustRegister(attempts, fallbacks, approvals, duration)
	return &FlowMetrics{
		attempts:  attempts,
		fallbacks: fallbacks,
		approvals: approvals,
		duration:  duration,
	}
}

// IncAttempt increments the attempt counter for the named flow.
func (f *FlowMetrics) IncAttempt(flow string) {
	if f == nil || f.attempts == nil {
		return
	}
	f.attempts.WithLabelValues(normalizeLabel(flow)).Inc()
}

// IncFallback increments the fallback counter for the named flow and reason.
func (f *FlowMetrics) IncFallback(flow, reason string) {
	if f == nil || f.fallbacks == nil {
		return
	}
	f.fallbacks.WithLabelValues(normalizeLabel(flow), normalizeLabel(reason)).Inc()
}

// IncApproval increments the approval counter for the named flow.
func (f *FlowMetrics) IncApproval(flow string) {
	if f == nil || f.approvals == nil {
		return
	}
	f.approvals.WithLabelValues(normalizeLabel(flow)).Inc()
}

// ObserveAttemptDuration records how long an attempt took for the named flow.
func (f *FlowMetrics) ObserveAttemptDuration(flow string, duration time.Duration) {
	if f == nil || f.duration == nil {
		return
	}
	f.duration.WithLabelValues(normalizeLabel(flow)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
