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

type UserCertificateController struct {
	userCertificates *services.UserCertificates
	uploads          utils.Uploads
}

func NewUserCertificateController(userCertificates *services.UserCertificates, uploads utils.Uploads) *UserCertificateController {
	return &UserCertificateController{userCertificates: userCertificates, uploads: uploads}
}

// Create records a certificate submitted by its holder. It waits for admin
// approval before showing up in the directory.
func (h *UserCertificateController) Create(c *fiber.Ctx) error {
	reqData := c.Locals(validators.KeyUserCertificate).(*validators.UserCertificateRequest)
	principal, _ := middleware.CurrentPrincipal(c)

	cert, err := h.userCertificates.Create(c.UserContext(), reqData.ToInput(principal.UserID), false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User certificate created successfully", cert)
}

func (h *UserCertificateController) CreateByAdmin(c *fiber.Ctx) error {
	reqData := c.Locals(validators.KeyUserCertificate).(*validators.UserCertificateRequest)

	cert, err := h.userCertificates.Create(c.UserContext(), reqData.ToInput(""), true)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User certificate created successfully", cert)
}

// List returns the caller's own certificates, or any user's for admins.
func (h *UserCertificateController) List(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Locals(validators.KeyUserCertQuery).(*validators.UserCertificateQuery)
		filter := services.UserCertificateFilter{
			UserID: query.UserID,
			State:  models.UserCertificateState(query.Status),
			Page:   services.Page{Limit: query.Limit, Offset: query.Offset},
		}
		if !middleware.HasRole(c, adminRole) {
			principal, _ := middleware.CurrentPrincipal(c)
			filter.UserID = principal.UserID
		}

		certs, err := h.userCertificates.List(c.UserContext(), filter)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "User certificates retrieved successfully", certs)
	}
}

func (h *UserCertificateController) Approve(c *fiber.Ctx) error {
	cert, err := h.userCertificates.Approve(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User certificate approved successfully", cert)
}

// Upload stores the certificate document and returns its URL for a later
// create call.
func (h *UserCertificateController) Upload(c *fiber.Ctx) error {
	file := c.Locals(validators.KeyUpload).(*multipart.FileHeader)

	url, err := h.uploads.Save(file, utils.FolderUserCert)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Upload successful", fiber.Map{"fileUrl": url})
}
