package validators

import (
	"strings"

	"edutrack/services"

	"github.com/gofiber/fiber/v2"
)

type EmailPreviewRequest struct {
	ParticipantID     uint   `json:"registration_participant_id" validate:"required"`
	CertificateNumber string `json:"certificate_number" validate:"required"`
	IssuedDate        string `json:"issued_date" validate:"required,isodate"`
	ExpiredDate       string `json:"expired_date" validate:"omitempty,isodate"`
}

func (r *EmailPreviewRequest) ToPreview() services.CertificatePreview {
	issued, _ := parseDate(r.IssuedDate)
	p := services.CertificatePreview{
		ParticipantID:     r.ParticipantID,
		CertificateNumber: strings.TrimSpace(r.CertificateNumber),
		IssuedDate:        issued,
	}
	if r.ExpiredDate != "" {
		if expired, err := parseDate(r.ExpiredDate); err == nil {
			p.ExpiredDate = &expired
		}
	}
	return p
}

func EmailPreview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(EmailPreviewRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyEmailPreview, reqData)
		return c.Next()
	}
}

type EmailSendRequest struct {
	CertificateNumber string `json:"certificate_number" validate:"required"`
}

func EmailSend() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(EmailSendRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		reqData.CertificateNumber = strings.TrimSpace(reqData.CertificateNumber)
		c.Locals(KeyEmailSend, reqData)
		return c.Next()
	}
}
