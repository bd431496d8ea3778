package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the dispatcher's Prometheus collectors.
type Metrics struct {
	Dispatches *prometheus.CounterVec
	Actions    *prometheus.CounterVec
	Duration   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaani_dispatch_total",
			Help: "Messages dispatched, partitioned by command type and detected language.",
		}, []string{"command", "language"}),
		Actions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaani_actions_total",
			Help: "Executed actions, partitioned by tool and outcome status.",
		}, []string{"tool", "status"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaani_dispatch_duration_seconds",
			Help:    "End-to-end dispatch latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeDispatch(command, language string, seconds float64) {
	if m == nil {
		return
	}
	if command == "" {
		command = "error"
	}
	m.Dispatches.WithLabelValues(command, language).Inc()
	m.Duration.Observe(seconds)
}

func (m *Metrics) observeAction(tool, status string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(tool, status).Inc()
}
