package validators

import (
	"strings"

	"edutrack/errs"
	"edutrack/middleware"
	"edutrack/models"
	"edutrack/services"

	"github.com/gofiber/fiber/v2"
)

type ParticipantRef struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

type RegistrationRequest struct {
	TrainingID       uint             `json:"training_id" validate:"required"`
	RegistrantID     string           `json:"registrant_id" validate:"max=128"`
	TrainingDate     string           `json:"training_date" validate:"required,isodate"`
	ParticipantCount int              `json:"participant_count" validate:"required,gt=0"`
	Participants     []ParticipantRef `json:"participants" validate:"required,min=1,dive"`
	FinalPrice       *int64           `json:"final_price" validate:"omitempty,gte=0"`
	TrainingFees     *int64           `json:"training_fees" validate:"omitempty,gte=0"`
	PaymentProof     *string          `json:"payment_proof" validate:"omitempty,url"`
}

// ToInput builds the service input. The registrant defaults to the caller.
func (r *RegistrationRequest) ToInput(callerID string) services.RegistrationInput {
	registrant := strings.TrimSpace(r.RegistrantID)
	if registrant == "" {
		registrant = callerID
	}
	trainingDate, _ := parseDate(r.TrainingDate)
	participants := make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		participants = append(participants, strings.TrimSpace(p.UserID))
	}
	return services.RegistrationInput{
		TrainingID:       r.TrainingID,
		RegistrantID:     registrant,
		TrainingDate:     trainingDate,
		ParticipantCount: r.ParticipantCount,
		Participants:     participants,
		FinalPrice:       r.FinalPrice,
		TrainingFees:     r.TrainingFees,
		PaymentProof:     r.PaymentProof,
	}
}

func CreateRegistration() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RegistrationRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		if reqData.ParticipantCount != len(reqData.Participants) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"participant_count": "participant_count must match the number of participants!",
			})
		}
		c.Locals(KeyRegistration, reqData)
		return c.Next()
	}
}

// StatusFilter parses the optional ?status=1,4 list. An absent parameter
// leaves the filter empty.
func StatusFilter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Query("status"))
		var statuses []models.RegistrationStatus
		if raw != "" {
			parsed, err := services.ParseStatuses(raw)
			if err != nil {
				return middleware.ValidationErrorResponse(c, map[string]string{"status": errs.Message(err)})
			}
			statuses = parsed
		}
		c.Locals(KeyStatuses, statuses)
		return c.Next()
	}
}

type RegistrationSearchQuery struct {
	Search               string `query:"search"`
	TrainingID           uint   `query:"training_id"`
	RegistrantID         string `query:"registrant_id"`
	RegistrantName       string `query:"registrant_name"`
	TrainingName         string `query:"training_name"`
	Status               string `query:"status"`
	TrainingDateFrom     string `query:"training_date_from" validate:"omitempty,isodate"`
	TrainingDateTo       string `query:"training_date_to" validate:"omitempty,isodate"`
	RegistrationDateFrom string `query:"registration_date_from" validate:"omitempty,isodate"`
	RegistrationDateTo   string `query:"registration_date_to" validate:"omitempty,isodate"`
	SortBy               string `query:"sort_by"`
	SortOrder            string `query:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page
	statuses []models.RegistrationStatus
}

func (q *RegistrationSearchQuery) Filter() services.RegistrationFilter {
	return services.RegistrationFilter{
		Statuses:             q.statuses,
		Keyword:              strings.TrimSpace(q.Search),
		TrainingID:           q.TrainingID,
		RegistrantID:         q.RegistrantID,
		RegistrantName:       q.RegistrantName,
		TrainingName:         q.TrainingName,
		TrainingDateFrom:     startOfDay(q.TrainingDateFrom),
		TrainingDateTo:       endOfDay(q.TrainingDateTo),
		RegistrationDateFrom: startOfDay(q.RegistrationDateFrom),
		RegistrationDateTo:   endOfDay(q.RegistrationDateTo),
		SortBy:               q.SortBy,
		SortOrder:            q.SortOrder,
		Page:                 services.Page{Limit: q.Limit, Offset: q.Offset},
	}
}

func SearchRegistrations() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RegistrationSearchQuery)
		if ok, err := parseQuery(c, reqData); !ok {
			return err
		}
		if strings.TrimSpace(reqData.Status) != "" {
			statuses, err := services.ParseStatuses(reqData.Status)
			if err != nil {
				return middleware.ValidationErrorResponse(c, map[string]string{"status": errs.Message(err)})
			}
			reqData.statuses = statuses
		}
		c.Locals(KeyRegistrationSrch, reqData)
		return c.Next()
	}
}

type StatusRequest struct {
	Status int `json:"status" validate:"required,min=1,max=5"`
}

// UpdateStatus validates the registration id and the target status.
func UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(StatusRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyStatus, models.RegistrationStatus(reqData.Status))
		return c.Next()
	}
}

type PaymentProofRequest struct {
	PaymentProof string `json:"payment_proof" validate:"required,url"`
}

func PaymentProof() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PaymentProofRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyPaymentProof, reqData)
		return c.Next()
	}
}
