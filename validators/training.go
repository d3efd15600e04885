package validators

import (
	"strings"

	"edutrack/models"
	"edutrack/services"

	"github.com/gofiber/fiber/v2"
)

type TrainingRequest struct {
	Name           string   `json:"training_name" validate:"required,max=255"`
	Description    string   `json:"description"`
	Duration       int      `json:"duration" validate:"gte=0"`
	Fee            int64    `json:"training_fees" validate:"gte=0"`
	Discount       int      `json:"discount" validate:"gte=0,lte=100"`
	ValidityPeriod int      `json:"validity_period" validate:"gte=0"`
	TermCondition  string   `json:"term_condition"`
	Level          string   `json:"level" validate:"max=50"`
	Skills         []string `json:"skills" validate:"dive,required"`
	Images         []string `json:"images" validate:"dive,url"`
}

func (r *TrainingRequest) ToInput(createdBy string) services.TrainingInput {
	return services.TrainingInput{
		Name:           r.Name,
		Description:    r.Description,
		Duration:       r.Duration,
		Fee:            r.Fee,
		Discount:       r.Discount,
		ValidityPeriod: r.ValidityPeriod,
		TermCondition:  r.TermCondition,
		Level:          r.Level,
		Skills:         r.Skills,
		Images:         r.Images,
		CreatedBy:      createdBy,
	}
}

// Training validates a create or update body.
func Training() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TrainingRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Level = strings.TrimSpace(reqData.Level)

		c.Locals(KeyTraining, reqData)
		return c.Next()
	}
}

type TrainingQuery struct {
	Status int    `query:"status" validate:"omitempty,oneof=1 2"`
	Level  string `query:"level"`
	Search string `query:"search"`
	Page
}

func (q *TrainingQuery) Filter() services.TrainingFilter {
	return services.TrainingFilter{
		Status:  models.TrainingStatus(q.Status),
		Level:   q.Level,
		Keyword: strings.TrimSpace(q.Search),
		Page:    services.Page{Limit: q.Limit, Offset: q.Offset},
	}
}

// ListTrainings validates the catalog filters.
func ListTrainings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TrainingQuery)
		if ok, err := parseQuery(c, reqData); !ok {
			return err
		}
		c.Locals(KeyTrainingFilter, reqData)
		return c.Next()
	}
}
