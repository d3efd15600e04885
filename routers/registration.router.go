package routers

import (
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

func (r Router) setupRegistrationRoutes(app *fiber.App) {
	registrationGroup := app.Group("/registration", r.Auth)

	registrationGroup.Post("/", validators.CreateRegistration(), r.Registration.Create)
	registrationGroup.Get("/", validators.StatusFilter(), r.Registration.List(r.AdminRole))
	registrationGroup.Get("/search", validators.SearchRegistrations(), r.Registration.Search(r.AdminRole))
	registrationGroup.Get("/:id", validators.PathID("id"), r.Registration.Get(r.AdminRole))
	registrationGroup.Put("/update/:id", r.Admin, validators.PathID("id"), validators.UpdateStatus(), r.Registration.UpdateStatus)
	registrationGroup.Put("/:id/payment-proof", validators.PathID("id"), validators.PaymentProof(), r.Registration.PaymentProof(r.AdminRole))
	registrationGroup.Post("/:id/payment-proof/upload", validators.PathID("id"), validators.Upload(), r.Registration.UploadPaymentProof(r.AdminRole))
}
