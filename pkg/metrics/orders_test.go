package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector, match func(*dto.Metric) bool) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)
	for m := range ch {
		var metric dto.Metric
		require.NoError(t, m.Write(&metric))
		if match(&metric) {
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestOrderMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.IncSubmission("success")
	m.IncSubmission("success")
	m.IncSubmission("")
	m.IncOrphan()
	m.IncTransition("pending", "confirmed")

	got := counterValue(t, m.submissions, func(metric *dto.Metric) bool {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "result" && label.GetValue() == "success" {
				return true
			}
		}
		return false
	})
	assert.Equal(t, float64(2), got)

	assert.Equal(t, float64(1), counterValue(t, m.orphans, func(*dto.Metric) bool { return true }))

	got = counterValue(t, m.transitions, func(metric *dto.Metric) bool {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "to" && label.GetValue() == "confirmed" {
				return true
			}
		}
		return false
	})
	assert.Equal(t, float64(1), got)
}

func TestNilSafeWithoutRegisterer(t *testing.T) {
	m := NewOrderMetrics(nil)
	m.IncSubmission("success")
	m.IncOrphan()
	m.IncTransition("a", "b")

	var nilMetrics *OrderMetrics
	nilMetrics.IncSubmission("success")
}
