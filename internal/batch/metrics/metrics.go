package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the batch registry.
type Metrics struct {
	BatchesRegistered prometheus.Counter
	MarkerReplays     prometheus.Counter
	RegisterDuration  prometheus.Histogram
}

// New creates a new Metrics instance with all batch registry metrics registered.
func New() *Metrics {
	return &Metrics{
		BatchesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healx_batches_registered_total",
			Help: "Total number of medicine batches registered",
		}),
		MarkerReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healx_batch_marker_replays_total",
			Help: "Registrations refused because the payment transaction was already recorded",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "healx_batch_register_duration_seconds",
			Help:    "Duration of batch registration including marker minting and QR rendering",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	if m != nil {
		m.BatchesRegistered.Inc()
	}
}

func (m *Metrics) IncrementMarkerReplay() {
	if m != nil {
		m.MarkerReplays.Inc()
	}
}

// ObserveRegister records the duration of a Register call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	if m != nil {
		m.RegisterDuration.Observe(time.Since(start).Seconds())
	}
}
