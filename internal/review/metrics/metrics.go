package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the review engine.
type Metrics struct {
	// Decision outcomes by resulting status
	ReviewOutcome *prometheus.CounterVec

	// Decide calls that lost against an earlier decision
	ReviewConflicts prometheus.Counter

	DecideLatency prometheus.Histogram
}

// New creates a new Metrics instance with all review engine metrics registered.
func New() *Metrics {
	return &Metrics{
		ReviewOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healx_review_outcomes_total",
			Help: "Total regulatory decisions by resulting status",
		}, []string{"status"}), // status: "approved", "rejected"

		ReviewConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healx_review_conflicts_total",
			Help: "Decisions refused because the batch had already been reviewed",
		}),

		DecideLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "healx_review_decide_duration_seconds",
			Help:    "Duration of a regulatory decision including the conditional update",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.ReviewOutcome.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementConflict() {
	if m != nil {
		m.ReviewConflicts.Inc()
	}
}

func (m *Metrics) ObserveDecideLatency(d time.Duration) {
	if m != nil {
		m.DecideLatency.Observe(d.Seconds())
	}
}
