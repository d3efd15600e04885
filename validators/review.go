package validators

import (
	"strings"

	"edutrack/services"

	"github.com/gofiber/fiber/v2"
)

type ReviewRequest struct {
	ParticipantID uint   `json:"registration_participant_id" validate:"required"`
	Score         int    `json:"score" validate:"required,min=1,max=5"`
	Description   string `json:"review_description" validate:"max=2000"`
}

func (r *ReviewRequest) ToInput() services.ReviewInput {
	return services.ReviewInput{
		ParticipantID: r.ParticipantID,
		Score:         r.Score,
		Description:   strings.TrimSpace(r.Description),
	}
}

func Review() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReviewRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		c.Locals(KeyReview, reqData)
		return c.Next()
	}
}
