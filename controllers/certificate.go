package controllers

import (
	"mime/multipart"

	"edutrack/middleware"
	"edutrack/services"
	"edutrack/utils"
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

type CertificateController struct {
	certificates *services.Certificates
	uploads      utils.Uploads
}

func NewCertificateController(certificates *services.Certificates, uploads utils.Uploads) *CertificateController {
	return &CertificateController{certificates: certificates, uploads: uploads}
}

// Issue is the manual issuance path for an attended participant.
func (h *CertificateController) Issue(c *fiber.Ctx) error {
	reqData := c.Locals(validators.KeyCertificate).(*validators.CertificateRequest)

	cert, err := h.certificates.IssueFor(c.UserContext(), reqData.ParticipantID, reqData.Issued(), reqData.CertFile)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate created successfully!", cert)
}

func (h *CertificateController) List(c *fiber.Ctx) error {
	query := c.Locals(validators.KeyCertificateQuery).(*validators.CertificateQuery)
	certs, err := h.certificates.Search(c.UserContext(), query.Filter())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates retrieved successfully!", certs)
}

func (h *CertificateController) Get(c *fiber.Ctx) error {
	cert, err := h.certificates.Get(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate retrieved successfully!", cert)
}

// Verify is the public lookup by certificate number.
func (h *CertificateController) Verify(c *fiber.Ctx) error {
	cert, err := h.certificates.GetByNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate retrieved successfully!", cert)
}

func (h *CertificateController) AttachFile(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	reqData := c.Locals(validators.KeyCertificateFile).(*validators.CertificateFileRequest)

	cert, err := h.certificates.AttachFile(c.UserContext(), id, reqData.CertFile)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate updated successfully!", cert)
}

// UploadFile stores the rendered certificate document and links it.
func (h *CertificateController) UploadFile(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	file := c.Locals(validators.KeyUpload).(*multipart.FileHeader)

	if _, err := h.certificates.Get(c.UserContext(), id); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	url, err := h.uploads.Save(file, utils.FolderCertificate)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	cert, err := h.certificates.AttachFile(c.UserContext(), id, url)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate file uploaded successfully!", cert)
}

func (h *CertificateController) Revoke(c *fiber.Ctx) error {
	if err := h.certificates.Revoke(c.UserContext(), c.Locals("id").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate deleted successfully!", nil)
}

func (h *CertificateController) PreviewEmail(c *fiber.Ctx) error {
	reqData := c.Locals(validators.KeyEmailPreview).(*validators.EmailPreviewRequest)

	email, err := h.certificates.Preview(c.UserContext(), reqData.ToPreview())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email preview generated successfully!", fiber.Map{
		"to":      email.To,
		"subject": email.Subject,
		"html":    email.HTML,
	})
}

func (h *CertificateController) SendEmail(c *fiber.Ctx) error {
	reqData := c.Locals(validators.KeyEmailSend).(*validators.EmailSendRequest)

	if err := h.certificates.Resend(c.UserContext(), reqData.CertificateNumber); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email sent successfully!", nil)
}

// Directory lists platform and approved external certificates together.
func (h *CertificateController) Directory(c *fiber.Ctx) error {
	query := c.Locals(validators.KeyDirectoryQuery).(*validators.DirectoryQuery)
	entries, err := h.certificates.Directory(c.UserContext(), query.Filter())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Success get all certificates", entries)
}

func (h *CertificateController) DirectoryEntry(c *fiber.Ctx) error {
	entry, err := h.certificates.LookupNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate retrieved successfully!", entry)
}
