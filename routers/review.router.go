package routers

import (
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

func (r Router) setupReviewRoutes(app *fiber.App) {
	reviewGroup := app.Group("/review")

	reviewGroup.Get("/", validators.Pagination(), r.Review.List)
	reviewGroup.Get("/training/:id", validators.PathID("id"), r.Review.ByTraining)

	reviewGroup.Post("/", r.Auth, validators.Review(), r.Review.Create)
	reviewGroup.Get("/participant/:id", r.Auth, validators.PathID("id"), r.Review.ByParticipant)
}
