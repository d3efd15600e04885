package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes counters and latencies for the enrollment lifecycle.
type Metrics struct {
	// Operation outcomes by operation and error kind ("ok" on success)
	Operations *prometheus.CounterVec

	// Operation latency by operation
	Latency *prometheus.HistogramVec

	CertificatesIssued  prometheus.Counter
	CertificatesRevoked prometheus.Counter
	ReviewsRecorded     prometheus.Counter

	// Notification deliveries by channel and result
	Notifications *prometheus.CounterVec
}

// New registers all metrics with reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "edutrack_operations_total",
			Help: "Core operations by name and outcome",
		}, []string{"operation", "outcome"}),

		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edutrack_operation_duration_seconds",
			Help:    "Duration of core operations including the enclosing transaction",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		CertificatesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "edutrack_certificates_issued_total",
			Help: "Certificates issued",
		}),
		CertificatesRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "edutrack_certificates_revoked_total",
			Help: "Certificates revoked",
		}),
		ReviewsRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "edutrack_reviews_recorded_total",
			Help: "Reviews recorded",
		}),

		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "edutrack_notifications_total",
			Help: "Certificate notifications by channel and result",
		}, []string{"channel", "result"}),
	}
}

// Observe records the outcome and latency of one operation.
func (m *Metrics) Observe(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
		m.Latency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IssuedCertificates(n int) {
	if m != nil && n > 0 {
		m.CertificatesIssued.Add(float64(n))
	}
}

func (m *Metrics) RevokedCertificates(n int) {
	if m != nil && n > 0 {
		m.CertificatesRevoked.Add(float64(n))
	}
}

func (m *Metrics) RecordedReview() {
	if m != nil {
		m.ReviewsRecorded.Inc()
	}
}

func (m *Metrics) Notified(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Notifications.WithLabelValues(channel, result).Inc()
}
