package report

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts inventory cycles.
type Metrics struct {
	reports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the reporter metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pluginreporter",
			Name:      "reports_total",
			Help:      "Inventory cycles by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pluginreporter",
			Name:      "report_duration_seconds",
			Help:      "Time spent in one inventory cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"trigger"}),
	}
	reg.MustRegister(m.reports, m.duration)
	return m
}

func (m *Metrics) observe(res Result, elapsed time.Duration) {
	m.reports.WithLabelValues(string(res.Trigger), string(res.Outcome)).Inc()
	m.duration.WithLabelValues(string(res.Trigger)).Observe(elapsed.Seconds())
}
