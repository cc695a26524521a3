package certificateValidator

import (
	"fmt"
	"strings"

	"institute/middleware"
	"institute/services/credential"
	"institute/validators"

	"github.com/gofiber/fiber/v2"
)

// StudentParams validates the :student_id path parameter.
func StudentParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		studentID, ok := validators.ParamID(c, "student_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid student ID!", nil)
		}
		c.Locals("studentID", studentID)
		return c.Next()
	}
}

// CertificateFile requires a multipart "file" of at most maxBytes.
func CertificateFile(maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "Certificate file is required!"})
		}
		if file.Size == 0 || (maxBytes > 0 && file.Size > maxBytes) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"file": fmt.Sprintf("Certificate file must be between 1 byte and %d MB!", maxBytes>>20),
			})
		}
		c.Locals("upload", file)
		return c.Next()
	}
}

// VerifyCertificate parses the public verification request. The two-field rule
// is enforced by the verifier so that it answers BAD_REQUEST, not 422.
func VerifyCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CertificateID string `json:"certificate_id" validate:"notblank,max=32"`
			Aadhar        string `json:"aadhar" validate:"max=32"`
			Email         string `json:"email" validate:"max=255"`
			Pan           string `json:"pan" validate:"max=16"`
			Phone         string `json:"phone" validate:"max=20"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("certificateID", strings.ToUpper(strings.TrimSpace(reqData.CertificateID)))
		c.Locals("claims", credential.Claims{
			Aadhar: reqData.Aadhar,
			Email:  reqData.Email,
			Pan:    reqData.Pan,
			Phone:  reqData.Phone,
		})
		return c.Next()
	}
}
