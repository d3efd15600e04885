package controllers

import (
	"edutrack/middleware"
	"edutrack/models"
	"edutrack/services"
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentController struct {
	attendance *services.Attendance
}

func NewEnrollmentController(attendance *services.Attendance) *EnrollmentController {
	return &EnrollmentController{attendance: attendance}
}

// SetAttendance marks one participant. Marking attended issues the
// certificate in the same transaction.
func (h *EnrollmentController) SetAttendance(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	reqData := c.Locals(validators.KeyAttendance).(*validators.AttendanceRequest)

	result, err := h.attendance.Set(c.UserContext(), id, *reqData.AttendanceStatus)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attendance status updated successfully!", result)
}

func (h *EnrollmentController) SetAttendances(c *fiber.Ctx) error {
	reqData := c.Locals(validators.KeyBulkAttendance).(*validators.BulkAttendanceRequest)

	result, err := h.attendance.SetBulk(c.UserContext(), reqData.ParticipantIDs, *reqData.AttendanceStatus)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attendance status updated successfully!", result)
}

func (h *EnrollmentController) Participants(c *fiber.Ctx) error {
	query := c.Locals(validators.KeyParticipantQuery).(*validators.ParticipantQuery)
	records, err := h.attendance.CompletedParticipants(c.UserContext(), query.Filter())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Participants retrieved successfully!", records)
}

func (h *EnrollmentController) Graduates(c *fiber.Ctx) error {
	stats, err := h.attendance.GraduationStats(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Graduation statistics retrieved successfully!", stats)
}

// History lists a user's enrollments. Callers other than admins only see
// their own.
func (h *EnrollmentController) History(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("user_id")
		if !middleware.IsSelfOrRole(c, userID, adminRole) {
			return middleware.Forbidden(c)
		}
		status, _ := c.Locals(validators.KeyHistoryStatus).(*models.RegistrationStatus)

		records, err := h.attendance.UserHistory(c.UserContext(), userID, status)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Training history retrieved successfully!", records)
	}
}
