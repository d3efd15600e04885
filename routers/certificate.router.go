package routers

import (
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

func (r Router) setupCertificateRoutes(app *fiber.App) {
	certGroup := app.Group("/certificate")

	// Public verification by number
	certGroup.Get("/verify/:number", r.Certificate.Verify)

	certGroup.Post("/", r.Auth, r.Admin, validators.IssueCertificate(), r.Certificate.Issue)
	certGroup.Get("/", r.Auth, r.Admin, validators.SearchCertificates(), r.Certificate.List)
	certGroup.Get("/:id", r.Auth, validators.PathID("id"), r.Certificate.Get)
	certGroup.Put("/:id/file", r.Auth, r.Admin, validators.PathID("id"), validators.CertificateFile(), r.Certificate.AttachFile)
	certGroup.Post("/:id/file/upload", r.Auth, r.Admin, validators.PathID("id"), validators.Upload(), r.Certificate.UploadFile)
	certGroup.Delete("/:id", r.Auth, r.Admin, validators.PathID("id"), r.Certificate.Revoke)
}

func (r Router) setupEmailRoutes(app *fiber.App) {
	emailGroup := app.Group("/email/certificate", r.Auth, r.Admin)

	emailGroup.Post("/preview", validators.EmailPreview(), r.Certificate.PreviewEmail)
	emailGroup.Post("/send", validators.EmailSend(), r.Certificate.SendEmail)
}
