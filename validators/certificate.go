package validators

import (
	"strings"
	"time"

	"edutrack/services"

	"github.com/gofiber/fiber/v2"
)

type CertificateRequest struct {
	ParticipantID uint    `json:"registration_participant_id" validate:"required"`
	IssuedDate    string  `json:"issued_date" validate:"omitempty,isodate"`
	CertFile      *string `json:"cert_file" validate:"omitempty,url"`
}

// Issued returns the requested issue date, or nil for today.
func (r *CertificateRequest) Issued() *time.Time {
	if r.IssuedDate == "" {
		return nil
	}
	t, err := parseDate(r.IssuedDate)
	if err != nil {
		return nil
	}
	return &t
}

func IssueCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CertificateRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyCertificate, reqData)
		return c.Next()
	}
}

type CertificateFileRequest struct {
	CertFile string `json:"cert_file" validate:"required,url"`
}

func CertificateFile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CertificateFileRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyCertificateFile, reqData)
		return c.Next()
	}
}

type CertificateQuery struct {
	Number       string `query:"certificate_number"`
	FullName     string `query:"fullname"`
	TrainingName string `query:"training_name"`
	TrainingID   uint   `query:"training_id"`
	UserID       string `query:"user_id"`
	Search       string `query:"search"`
	Page
}

func (q *CertificateQuery) Filter() services.CertificateFilter {
	return services.CertificateFilter{
		Number:       strings.TrimSpace(q.Number),
		FullName:     strings.TrimSpace(q.FullName),
		TrainingName: strings.TrimSpace(q.TrainingName),
		TrainingID:   q.TrainingID,
		UserID:       strings.TrimSpace(q.UserID),
		Keyword:      strings.TrimSpace(q.Search),
		Page:         services.Page{Limit: q.Limit, Offset: q.Offset},
	}
}

func SearchCertificates() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CertificateQuery)
		if ok, err := parseQuery(c, reqData); !ok {
			return err
		}
		c.Locals(KeyCertificateQuery, reqData)
		return c.Next()
	}
}
