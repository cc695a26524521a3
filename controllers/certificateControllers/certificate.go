package certificateController

import (
	"fmt"
	"mime/multipart"

	"institute/errdefs"
	"institute/middleware"
	"institute/services/credential"
	"institute/utils"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the certificate routes.
type Handler struct {
	Certificates   *credential.Service
	MaxUploadBytes int64
}

func (h *Handler) readArtifact(c *fiber.Ctx) (credential.Artifact, error) {
	file := c.Locals("upload").(*multipart.FileHeader)
	data, name, err := utils.ReadUploadedFile(file, h.MaxUploadBytes)
	if err != nil {
		return credential.Artifact{}, fmt.Errorf("%w: %v", errdefs.ErrValidationFailed, err)
	}
	return credential.Artifact{Filename: name, Data: data}, nil
}

func (h *Handler) GetCertificate(c *fiber.Ctx) error {
	studentID := c.Locals("studentID").(uint)

	record, err := h.Certificates.Get(c.UserContext(), studentID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", record)
}

// IssueCertificate uploads a certificate, assigning an ID on first issuance.
func (h *Handler) IssueCertificate(c *fiber.Ctx) error {
	studentID := c.Locals("studentID").(uint)
	artifact, err := h.readArtifact(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	result, err := h.Certificates.Issue(c.UserContext(), studentID, artifact)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	status, message := fiber.StatusOK, "Certificate updated successfully!"
	if result.Created {
		status, message = fiber.StatusCreated, "Certificate issued successfully!"
	}
	return middleware.JsonResponse(c, status, true, message, fiber.Map{
		"certificate_id":     result.Record.CertificateID,
		"certificate_url":    result.Record.CertificateURL,
		"certificate_status": result.Record.CertificateStatus,
		"notified":           result.Notified,
	})
}

// UpdateCertificate replaces the artifact of an existing certificate.
func (h *Handler) UpdateCertificate(c *fiber.Ctx) error {
	studentID := c.Locals("studentID").(uint)
	artifact, err := h.readArtifact(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	record, err := h.Certificates.Update(c.UserContext(), studentID, artifact)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate updated successfully!", record)
}

func (h *Handler) DeleteCertificateArtifact(c *fiber.Ctx) error {
	studentID := c.Locals("studentID").(uint)

	record, err := h.Certificates.DeleteArtifact(c.UserContext(), studentID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate file removed successfully!", record)
}

// VerifyCertificate is the public check: certificate ID plus two identity fields.
func (h *Handler) VerifyCertificate(c *fiber.Ctx) error {
	certificateID := c.Locals("certificateID").(string)
	claims := c.Locals("claims").(credential.Claims)

	url, err := h.Certificates.Verify(c.UserContext(), certificateID, claims)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate verified successfully!", fiber.Map{
		"certificate_id":  certificateID,
		"certificate_url": url,
	})
}
