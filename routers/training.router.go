package routers

import (
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

func (r Router) setupTrainingRoutes(app *fiber.App) {
	trainingGroup := app.Group("/training")

	trainingGroup.Get("/", validators.ListTrainings(), r.Training.List)
	trainingGroup.Get("/:id", validators.PathID("id"), r.Training.Get)

	trainingGroup.Post("/", r.Auth, r.Admin, validators.Training(), r.Training.Create)
	trainingGroup.Put("/:id/archive", r.Auth, r.Admin, validators.PathID("id"), r.Training.Archive)
	trainingGroup.Put("/:id", r.Auth, r.Admin, validators.PathID("id"), validators.Training(), r.Training.Update)
}
