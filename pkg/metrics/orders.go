package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle outcomes. The orphan counter is the
// operational signal for out-of-band reconciliation of compensating-delete
// failures.
type OrderMetrics struct {
	submissions *prometheus.CounterVec
	orphans     prometheus.Counter
	transitions *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Order submission attempts by result.",
	}, []string{"result"})
	orphans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_submission_orphans_total",
		Help: "Failed submissions whose compensating delete also failed.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Successful order status transitions.",
	}, []string{"from", "to"})
	reg.MustRegister(submissions, orphans, transitions)
	return &OrderMetrics{
		submissions: submissions,
		orphans:     orphans,
		transitions: transitions,
	}
}

// IncSubmission records a submission attempt outcome.
func (m *OrderMetrics) IncSubmission(result string) {
	if m == nil || m.submissions == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.submissions.WithLabelValues(result).Inc()
}

// IncOrphan records a compensating-delete failure.
func (m *OrderMetrics) IncOrphan() {
	if m == nil || m.orphans == nil {
		return
	}
	m.orphans.Inc()
}

// IncTransition records a successful status transition.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}
