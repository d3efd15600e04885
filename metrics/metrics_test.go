package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecording(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Observe("attendance.set", "ok", 10*time.Millisecond)
	m.Observe("attendance.set", "conflict", time.Millisecond)
	m.IssuedCertificates(2)
	m.RevokedCertificates(0)
	m.Notified("log", nil)
	m.Notified("kafka", errors.New("broker down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("attendance.set", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CertificatesIssued))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CertificatesRevoked))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("kafka", "error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe("x", "ok", time.Second)
		m.IssuedCertificates(1)
		m.RecordedReview()
		m.Notified("log", nil)
	})
}
