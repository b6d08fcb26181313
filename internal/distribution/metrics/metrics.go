package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the distribution ledger.
type Metrics struct {
	TransfersLogged  *prometheus.CounterVec
	TransfersRefused *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		TransfersLogged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healx_transfers_logged_total",
			Help: "Total custody events appended, by event type",
		}, []string{"event_type"}),
		TransfersRefused: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healx_transfers_refused_total",
			Help: "Transfers refused by a lifecycle guard, by reason",
		}, []string{"reason"}), // reason: "not_approved", "broken_chain", "marker_reused"
	}
}

func (m *Metrics) IncrementLogged(eventType string) {
	if m != nil {
		m.TransfersLogged.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) IncrementRefused(reason string) {
	if m != nil {
		m.TransfersRefused.WithLabelValues(reason).Inc()
	}
}
