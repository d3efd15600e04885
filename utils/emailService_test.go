package utils

import (
	"testing"
	"time"

	"edutrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCertificateEmail(t *testing.T) {
	expired := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ev := models.CertificateIssued{
		CertificateNumber: "CERTNO-202505011200-ABC123",
		ParticipantName:   "Dewi <Admin>",
		Email:             "dewi@example.com",
		TrainingName:      "Network Basics",
		IssuedDate:        time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		ExpiredDate:       &expired,
	}

	msg, err := RenderCertificateEmail(ev, "https://edu.example.com/certificates/", "Training Team")
	require.NoError(t, err)

	assert.Equal(t, "dewi@example.com", msg.To)
	assert.Equal(t, "Your Certificate for Network Basics is Ready!", msg.Subject)
	assert.Contains(t, msg.HTML, "https://edu.example.com/certificates/CERTNO-202505011200-ABC123")
	assert.Contains(t, msg.HTML, "2025-05-01")
	assert.Contains(t, msg.HTML, "2026-05-01")
	assert.Contains(t, msg.HTML, "Dewi &lt;Admin&gt;")
	assert.NotContains(t, msg.HTML, "<Admin>")
}

func TestRenderCertificateEmailNoExpiry(t *testing.T) {
	msg, err := RenderCertificateEmail(models.CertificateIssued{
		CertificateNumber: "CERTNO-1",
		TrainingName:      "T",
		IssuedDate:        time.Now(),
	}, "https://x", "Team")
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, NoExpiryLabel)
}
