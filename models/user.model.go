package models

import "time"

// User mirrors the identity provider's principal locally so that joins and
// notifications can resolve names and emails. Credentials live with the provider.
type User struct {
	ID        string    `json:"user_id" gorm:"primaryKey;size:128"`
	FullName  string    `json:"fullname" gorm:"default:''"`
	Email     string    `json:"email" gorm:"index;default:''"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
