package models

import "time"

type CertificateStatus string

const (
	CertificateValid   CertificateStatus = "Valid"
	CertificateExpired CertificateStatus = "Expired"
)

// Certificate is exclusively owned by its RegistrationParticipant; the unique
// index on RegistrationParticipantID is the declarative guard against double
// issuance. Rows are hard-deleted on revocation.
type Certificate struct {
	ID                        uint              `json:"id" gorm:"primaryKey"`
	Number                    string            `json:"certificate_number" gorm:"uniqueIndex;size:48;not null"`
	RegistrationParticipantID uint              `json:"registration_participant_id" gorm:"uniqueIndex;not null"`
	TrainingID                uint              `json:"training_id" gorm:"index;not null"`
	UserID                    string            `json:"user_id" gorm:"index;size:128;not null"`
	IssuedDate                time.Time         `json:"issued_date" gorm:"not null"`
	ExpiredDate               *time.Time        `json:"expired_date"`
	CertFile                  *string           `json:"cert_file"`
	CreatedAt                 time.Time         `json:"created_at"`
	UpdatedAt                 time.Time         `json:"updated_at"`
	Status                    CertificateStatus `json:"validity_status" gorm:"-"`

	ParticipantName string `json:"fullname,omitempty" gorm:"-"`
	TrainingName    string `json:"training_name,omitempty" gorm:"-"`
}

func (Certificate) TableName() string { return "certificate" }
