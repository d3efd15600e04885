package routers

import (
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

func (r Router) setupUserCertificateRoutes(app *fiber.App) {
	ucertGroup := app.Group("/ucertificate", r.Auth)

	ucertGroup.Post("/", validators.UserCertificate(), r.UserCertificate.Create)
	ucertGroup.Post("/create-by-admin", r.Admin, validators.UserCertificate(), r.UserCertificate.CreateByAdmin)
	ucertGroup.Get("/", validators.ListUserCertificates(), r.UserCertificate.List(r.AdminRole))
	ucertGroup.Post("/upload", validators.Upload(), r.UserCertificate.Upload)
	ucertGroup.Put("/:id/approve", r.Admin, validators.PathID("id"), r.UserCertificate.Approve)
}

// setupDirectoryRoutes exposes the combined certificate directory publicly.
func (r Router) setupDirectoryRoutes(app *fiber.App) {
	directoryGroup := app.Group("/certificates")

	directoryGroup.Get("/", validators.SearchDirectory(), r.Certificate.Directory)
	directoryGroup.Get("/search", validators.SearchDirectory(), r.Certificate.Directory)
	directoryGroup.Get("/:number", r.Certificate.DirectoryEntry)
}
