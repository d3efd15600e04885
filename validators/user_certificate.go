package validators

import (
	"strings"
	"time"

	"edutrack/services"

	"github.com/gofiber/fiber/v2"
)

type UserCertificateRequest struct {
	UserID            string `json:"user_id" validate:"max=128"`
	FullName          string `json:"fullname" validate:"required,max=255"`
	CertType          string `json:"cert_type" validate:"required,max=255"`
	Issuer            string `json:"issuer" validate:"required,max=255"`
	IssuedDate        string `json:"issued_date" validate:"required,isodate"`
	ExpiredDate       string `json:"expired_date" validate:"omitempty,isodate"`
	CertificateNumber string `json:"certificate_number" validate:"required,max=128"`
	CertFile          string `json:"cert_file" validate:"required"`
}

// ToInput builds the service input. owner, when set, replaces the user_id
// from the body.
func (r *UserCertificateRequest) ToInput(owner string) services.UserCertificateInput {
	in := services.UserCertificateInput{
		FullName:          r.FullName,
		CertType:          r.CertType,
		Issuer:            r.Issuer,
		CertificateNumber: r.CertificateNumber,
		CertFile:          r.CertFile,
	}
	in.IssuedDate, _ = parseDate(r.IssuedDate)
	if r.ExpiredDate != "" {
		if t, err := parseDate(r.ExpiredDate); err == nil {
			in.ExpiredDate = &t
		}
	}
	userID := strings.TrimSpace(r.UserID)
	if owner != "" {
		userID = owner
	}
	if userID != "" {
		in.UserID = &userID
	}
	return in
}

func UserCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserCertificateRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyUserCertificate, reqData)
		return c.Next()
	}
}

type UserCertificateQuery struct {
	UserID string `query:"user_id"`
	Status int    `query:"status" validate:"omitempty,oneof=1 2"`
	Page
}

func ListUserCertificates() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserCertificateQuery)
		if ok, err := parseQuery(c, reqData); !ok {
			return err
		}
		c.Locals(KeyUserCertQuery, reqData)
		return c.Next()
	}
}

type DirectoryQuery struct {
	Number      string `query:"certificate_number"`
	FullName    string `query:"fullname"`
	Title       string `query:"certificate_title"`
	IssuedDate  string `query:"issued_date" validate:"omitempty,isodate"`
	ExpiredDate string `query:"expired_date" validate:"omitempty,isodate"`
	Search      string `query:"q"`
	Page
}

func (q *DirectoryQuery) Filter() services.DirectoryFilter {
	return services.DirectoryFilter{
		Number:    strings.TrimSpace(q.Number),
		FullName:  strings.TrimSpace(q.FullName),
		Title:     strings.TrimSpace(q.Title),
		IssuedOn:  optionalDate(q.IssuedDate),
		ExpiredOn: optionalDate(q.ExpiredDate),
		Keyword:   strings.TrimSpace(q.Search),
		Page:      services.Page{Limit: q.Limit, Offset: q.Offset},
	}
}

func optionalDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil
	}
	return &t
}

func SearchDirectory() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DirectoryQuery)
		if ok, err := parseQuery(c, reqData); !ok {
			return err
		}
		c.Locals(KeyDirectoryQuery, reqData)
		return c.Next()
	}
}
