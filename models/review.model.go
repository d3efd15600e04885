package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is limited to one per participant by the review recorder, not by schema.
type Review struct {
	gorm.Model
	Code                      string    `json:"review_id" gorm:"uniqueIndex;size:40;not null"`
	RegistrationParticipantID uint      `json:"registration_participant_id" gorm:"index;not null"`
	TrainingID                uint      `json:"training_id" gorm:"index;not null"`
	Score                     int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 5"` // 1–5 rating
	Description               string    `json:"review_description" gorm:"type:text;default:''"`
	ReviewDate                time.Time `json:"review_date"`

	Participant *RegistrationParticipant `json:"-" gorm:"foreignKey:RegistrationParticipantID"`
}

func (Review) TableName() string { return "review" }
