package validators

import (
	"strconv"
	"strings"

	"edutrack/middleware"
	"edutrack/models"
	"edutrack/services"

	"github.com/gofiber/fiber/v2"
)

type AttendanceRequest struct {
	AttendanceStatus *bool `json:"attendance_status" validate:"required"`
}

func Attendance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AttendanceRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyAttendance, reqData)
		return c.Next()
	}
}

type BulkAttendanceRequest struct {
	ParticipantIDs   []uint `json:"registration_participant_ids" validate:"required,min=1,dive,gt=0"`
	AttendanceStatus *bool  `json:"attendance_status" validate:"required"`
}

func BulkAttendance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BulkAttendanceRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyBulkAttendance, reqData)
		return c.Next()
	}
}

type ParticipantQuery struct {
	AttendanceStatus string `query:"attendance_status" validate:"omitempty,oneof=true false null"`
	HasCertificate   string `query:"has_certificate" validate:"omitempty,oneof=true false"`
	Mode             string `query:"mode" validate:"omitempty,oneof=onprogress completed"`
	Search           string `query:"search"`
	TrainingDateFrom string `query:"training_date_from" validate:"omitempty,isodate"`
	TrainingDateTo   string `query:"training_date_to" validate:"omitempty,isodate"`
	RegistrationFrom string `query:"registration_date_from" validate:"omitempty,isodate"`
	RegistrationTo   string `query:"registration_date_to" validate:"omitempty,isodate"`
	SortBy           string `query:"sort_by"`
	SortOrder        string `query:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page
}

func (q *ParticipantQuery) Filter() services.ParticipantFilter {
	f := services.ParticipantFilter{
		AttendanceStatus: q.AttendanceStatus,
		Mode:             q.Mode,
		Keyword:          strings.TrimSpace(q.Search),
		TrainingDateFrom: startOfDay(q.TrainingDateFrom),
		TrainingDateTo:   endOfDay(q.TrainingDateTo),
		RegistrationFrom: startOfDay(q.RegistrationFrom),
		RegistrationTo:   endOfDay(q.RegistrationTo),
		SortBy:           q.SortBy,
		SortOrder:        q.SortOrder,
		Page:             services.Page{Limit: q.Limit, Offset: q.Offset},
	}
	if q.HasCertificate != "" {
		has := q.HasCertificate == "true"
		f.HasCertificate = &has
	}
	return f
}

func Participants() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ParticipantQuery)
		if ok, err := parseQuery(c, reqData); !ok {
			return err
		}
		c.Locals(KeyParticipantQuery, reqData)
		return c.Next()
	}
}

// History validates the user id path parameter and the optional status.
func History() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(c.Params("user_id")) == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "user_id is required!", nil)
		}
		var status *models.RegistrationStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			n, err := strconv.Atoi(raw)
			s := models.RegistrationStatus(n)
			if err != nil || !s.Valid() {
				return middleware.ValidationErrorResponse(c, map[string]string{"status": "status must be between 1 and 5!"})
			}
			status = &s
		}
		c.Locals(KeyHistoryStatus, status)
		return c.Next()
	}
}
