package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification projection.
type Metrics struct {
	Verifications   *prometheus.CounterVec
	VerifyLatency   prometheus.Histogram
	AuditWriteFails prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healx_verifications_total",
			Help: "Total verification reports by authenticity and method",
		}, []string{"authentic", "method"}),
		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "healx_verify_duration_seconds",
			Help:    "Duration of report assembly across batch, approval and event reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		AuditWriteFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healx_verification_record_failures_total",
			Help: "Verification records that could not be written",
		}),
	}
}

func (m *Metrics) IncrementVerification(authentic bool, method string) {
	if m != nil {
		m.Verifications.WithLabelValues(strconv.FormatBool(authentic), method).Inc()
	}
}

func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementRecordFailure() {
	if m != nil {
		m.AuditWriteFails.Inc()
	}
}
