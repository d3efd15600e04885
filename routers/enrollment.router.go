package routers

import (
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

func (r Router) setupEnrollmentRoutes(app *fiber.App) {
	enrollmentGroup := app.Group("/enrollment", r.Auth)

	enrollmentGroup.Get("/participants", r.Admin, validators.Participants(), r.Enrollment.Participants)
	enrollmentGroup.Get("/graduates", r.Admin, r.Enrollment.Graduates)
	enrollmentGroup.Get("/history/:user_id", validators.History(), r.Enrollment.History(r.AdminRole))
	enrollmentGroup.Put("/attendance/:id", r.Admin, validators.PathID("id"), validators.Attendance(), r.Enrollment.SetAttendance)
	enrollmentGroup.Put("/attendances", r.Admin, validators.BulkAttendance(), r.Enrollment.SetAttendances)
}
