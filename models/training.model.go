package models

import (
	"math"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TrainingStatus int

const (
	TrainingActive   TrainingStatus = 1
	TrainingArchived TrainingStatus = 2
)

func (s TrainingStatus) Valid() bool {
	return s == TrainingActive || s == TrainingArchived
}

// Training is a catalog entry. Graduates and Rating are derived aggregates and
// are only written by recomputation queries.
type Training struct {
	gorm.Model
	Code           string                      `json:"code" gorm:"uniqueIndex;size:40;not null"`
	Name           string                      `json:"training_name" gorm:"not null"`
	Description    string                      `json:"description" gorm:"type:text"`
	Duration       int                         `json:"duration" gorm:"default:0"` // in hours
	Fee            int64                       `json:"training_fees" gorm:"not null"`
	Discount       int                         `json:"discount" gorm:"default:0"` // percent
	ValidityPeriod int                         `json:"validity_period" gorm:"default:0"`
	TermCondition  string                      `json:"term_condition" gorm:"type:text"`
	Level          string                      `json:"level" gorm:"size:40;index"`
	Status         TrainingStatus              `json:"status" gorm:"not null;default:1;index"`
	Skills         datatypes.JSONSlice[string] `json:"skills"`
	Images         datatypes.JSONSlice[string] `json:"images"`
	Graduates      int64                       `json:"graduates" gorm:"not null;default:0"`
	Rating         float64                     `json:"rating" gorm:"not null;default:0"`
	CreatedBy      string                      `json:"created_by" gorm:"size:128"`
}

func (Training) TableName() string { return "training" }

// FinalPrice applies the catalog discount. A discount outside (0, 100) is ignored.
func (t Training) FinalPrice() int64 {
	if t.Discount <= 0 || t.Discount >= 100 {
		return t.Fee
	}
	return int64(math.Round(float64(t.Fee) - float64(t.Fee)*float64(t.Discount)/100))
}
