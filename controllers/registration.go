package controllers

import (
	"mime/multipart"

	"edutrack/middleware"
	"edutrack/models"
	"edutrack/services"
	"edutrack/utils"
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

type RegistrationController struct {
	registrations *services.Registrations
	uploads       utils.Uploads
}

func NewRegistrationController(registrations *services.Registrations, uploads utils.Uploads) *RegistrationController {
	return &RegistrationController{registrations: registrations, uploads: uploads}
}

func (h *RegistrationController) Create(c *fiber.Ctx) error {
	reqData, ok := c.Locals(validators.KeyRegistration).(*validators.RegistrationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	principal, _ := middleware.CurrentPrincipal(c)

	reg, err := h.registrations.Create(c.UserContext(), reqData.ToInput(principal.UserID))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration created successfully!", reg)
}

// List returns registrations, optionally those matching ?status=. Callers
// other than admins only see the ones they registered.
func (h *RegistrationController) List(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		statuses, _ := c.Locals(validators.KeyStatuses).([]models.RegistrationStatus)

		var (
			regs []models.Registration
			err  error
		)
		switch {
		case !middleware.HasRole(c, adminRole):
			principal, _ := middleware.CurrentPrincipal(c)
			regs, err = h.registrations.Search(c.UserContext(), services.RegistrationFilter{
				Statuses:     statuses,
				RegistrantID: principal.UserID,
			})
		case len(statuses) > 0:
			regs, err = h.registrations.ListByStatus(c.UserContext(), statuses)
		default:
			regs, err = h.registrations.List(c.UserContext())
		}
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Registrations retrieved successfully!", regs)
	}
}

func (h *RegistrationController) Search(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Locals(validators.KeyRegistrationSrch).(*validators.RegistrationSearchQuery)
		filter := query.Filter()
		if !middleware.HasRole(c, adminRole) {
			principal, _ := middleware.CurrentPrincipal(c)
			filter.RegistrantID = principal.UserID
		}

		regs, err := h.registrations.Search(c.UserContext(), filter)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Registrations retrieved successfully!", regs)
	}
}

// Get is open to the registrant, the registration's participants and admins.
func (h *RegistrationController) Get(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg, err := h.registrations.Get(c.UserContext(), c.Locals("id").(uint))
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if !middleware.IsSelfOrRole(c, reg.RegistrantID, adminRole) && !isParticipant(c, reg) {
			return middleware.Forbidden(c)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration retrieved successfully!", reg)
	}
}

func isParticipant(c *fiber.Ctx, reg *models.Registration) bool {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return false
	}
	for _, p := range reg.Participants {
		if p.UserID == principal.UserID {
			return true
		}
	}
	return false
}

// owned loads the registration and checks the caller registered it or is an
// admin. A nil registration means the response has already been written.
func (h *RegistrationController) owned(c *fiber.Ctx, adminRole string) (*models.Registration, error) {
	reg, err := h.registrations.Get(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return nil, middleware.ErrorResponse(c, err)
	}
	if !middleware.IsSelfOrRole(c, reg.RegistrantID, adminRole) {
		return nil, middleware.Forbidden(c)
	}
	return reg, nil
}

func (h *RegistrationController) UpdateStatus(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	status := c.Locals(validators.KeyStatus).(models.RegistrationStatus)

	reg, err := h.registrations.UpdateStatus(c.UserContext(), id, status)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration status updated successfully!", reg)
}

func (h *RegistrationController) PaymentProof(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg, err := h.owned(c, adminRole)
		if reg == nil {
			return err
		}
		reqData := c.Locals(validators.KeyPaymentProof).(*validators.PaymentProofRequest)

		if err := h.registrations.AttachPaymentProof(c.UserContext(), reg.ID, reqData.PaymentProof); err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment proof saved successfully!", fiber.Map{
			"registration_id": reg.ID,
			"payment_proof":   reqData.PaymentProof,
		})
	}
}

// UploadPaymentProof stores an uploaded payment document and links it to the
// registration.
func (h *RegistrationController) UploadPaymentProof(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg, err := h.owned(c, adminRole)
		if reg == nil {
			return err
		}
		file := c.Locals(validators.KeyUpload).(*multipart.FileHeader)

		url, err := h.uploads.Save(file, utils.FolderPaymentProof)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if err := h.registrations.AttachPaymentProof(c.UserContext(), reg.ID, url); err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment proof uploaded successfully!", fiber.Map{
			"registration_id": reg.ID,
			"payment_proof":   url,
		})
	}
}
