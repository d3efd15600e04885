package models

import (
	"time"

	"gorm.io/gorm"
)

// Registration books one or more participants into a training offering.
// CompletedDate is stamped on the first transition to Completed and never cleared.
type Registration struct {
	gorm.Model
	Code             string                    `json:"registration_id" gorm:"uniqueIndex;size:40;not null"`
	TrainingID       uint                      `json:"training_id" gorm:"index;not null"`
	RegistrantID     string                    `json:"registrant_id" gorm:"index;size:128;not null"`
	TrainingDate     time.Time                 `json:"training_date"`
	ParticipantCount int                       `json:"participant_count" gorm:"not null"`
	TotalPayment     int64                     `json:"total_payment" gorm:"not null"`
	PaymentProof     *string                   `json:"payment_proof"`
	Status           RegistrationStatus        `json:"status" gorm:"not null;default:1;index"`
	RegistrationDate time.Time                 `json:"registration_date"`
	CompletedDate    *time.Time                `json:"completed_date"`
	Training         *Training                 `json:"training,omitempty" gorm:"foreignKey:TrainingID"`
	Participants     []RegistrationParticipant `json:"participants" gorm:"foreignKey:RegistrationID"`

	RegistrantName string `json:"registrant_name,omitempty" gorm:"-"`
}

func (Registration) TableName() string { return "registration" }

// RegistrationParticipant is one individual's enrollment within a Registration.
// HasCertificate mirrors the existence of a Certificate row and is written only
// by the certificate issuer.
type RegistrationParticipant struct {
	gorm.Model
	Code             string        `json:"registration_participant_id" gorm:"uniqueIndex;size:40;not null"`
	RegistrationID   uint          `json:"registration_id" gorm:"index;not null"`
	UserID           string        `json:"user_id" gorm:"index;size:128;not null"`
	AttendanceStatus *bool         `json:"attendance_status"`
	HasCertificate   bool          `json:"has_certificate" gorm:"not null;default:false"`
	Registration     *Registration `json:"registration,omitempty" gorm:"foreignKey:RegistrationID"`
	Certificate      *Certificate  `json:"certificate,omitempty" gorm:"foreignKey:RegistrationParticipantID"`

	ParticipantName string `json:"participant_name,omitempty" gorm:"-"`
	Email           string `json:"email,omitempty" gorm:"-"`
}

func (RegistrationParticipant) TableName() string { return "registration_participant" }
