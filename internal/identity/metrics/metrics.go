package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ProfilesCreated *prometheus.CounterVec
	SessionsIssued  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ProfilesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healx_profiles_created_total",
			Help: "Total number of wallet profiles created, by role",
		}, []string{"role"}),
		SessionsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healx_sessions_issued_total",
			Help: "Total number of session tokens issued",
		}),
	}
}

func (m *Metrics) IncrementProfileCreated(role string) {
	if m != nil {
		m.ProfilesCreated.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) IncrementSessionIssued() {
	if m != nil {
		m.SessionsIssued.Inc()
	}
}
