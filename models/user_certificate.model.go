package models

import "time"

// UserCertificateState tracks whether an externally issued certificate has
// been checked by an admin. Only approved ones are listed publicly.
type UserCertificateState int

const (
	UserCertificateSubmitted UserCertificateState = 1
	UserCertificateApproved  UserCertificateState = 2
)

// UserCertificate records a certificate issued outside the platform, with
// the document uploaded by its holder or an admin.
type UserCertificate struct {
	ID                uint                 `json:"id" gorm:"primaryKey"`
	Code              string               `json:"user_certificate_id" gorm:"uniqueIndex;size:40;not null"`
	UserID            *string              `json:"user_id" gorm:"index;size:128"`
	FullName          string               `json:"fullname" gorm:"size:255;not null"`
	CertType          string               `json:"cert_type" gorm:"size:255;not null"`
	Issuer            string               `json:"issuer" gorm:"size:255;not null"`
	IssuedDate        time.Time            `json:"issued_date" gorm:"not null"`
	ExpiredDate       *time.Time           `json:"expired_date"`
	CertificateNumber string               `json:"certificate_number" gorm:"index;size:128;not null"`
	CertFile          string               `json:"cert_file" gorm:"not null"`
	State             UserCertificateState `json:"status" gorm:"index;not null;default:1"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Status            CertificateStatus    `json:"validity_status" gorm:"-"`
}

func (UserCertificate) TableName() string { return "user_certificates" }

// CertificateSource tells platform certificates from external ones in the
// combined directory.
type CertificateSource int

const (
	SourcePlatform CertificateSource = 1
	SourceExternal CertificateSource = 2
)

// CertificateEntry is one row of the combined certificate directory.
type CertificateEntry struct {
	ID                uint              `json:"certificate_id"`
	CertificateNumber string            `json:"certificate_number"`
	FullName          string            `json:"fullname"`
	Title             string            `json:"certificate_title"`
	IssuedDate        time.Time         `json:"issued_date"`
	ExpiredDate       *time.Time        `json:"expired_date"`
	CertFile          *string           `json:"cert_file"`
	Type              CertificateSource `json:"type"`
	Status            CertificateStatus `json:"validity_status"`
}
