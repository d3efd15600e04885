package models

import "time"

// CertificateIssued is handed to the notifier once an issuance has committed.
type CertificateIssued struct {
	CertificateID     uint       `json:"certificate_id"`
	CertificateNumber string     `json:"certificate_number"`
	ParticipantName   string     `json:"participant_name"`
	Email             string     `json:"email"`
	TrainingName      string     `json:"training_name"`
	IssuedDate        time.Time  `json:"issued_date"`
	ExpiredDate       *time.Time `json:"expired_date,omitempty"`
}
