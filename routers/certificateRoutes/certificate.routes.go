package certificateRoutes

import (
	controllers "institute/controllers/certificateControllers"
	"institute/middleware"
	validators "institute/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

func SetupCertificateRoutes(app *fiber.App, h *controllers.Handler) {
	certGroup := app.Group("/admin/certificate", middleware.JWTMiddleware, middleware.RequireRole(middleware.RoleAdmin))

	certGroup.Get("/:student_id", validators.StudentParams(), h.GetCertificate)
	certGroup.Post("/:student_id", validators.StudentParams(), validators.CertificateFile(h.MaxUploadBytes), h.IssueCertificate)
	certGroup.Put("/:student_id", validators.StudentParams(), validators.CertificateFile(h.MaxUploadBytes), h.UpdateCertificate)
	certGroup.Delete("/:student_id/artifact", validators.StudentParams(), h.DeleteCertificateArtifact)

	// Public verification
	app.Post("/certificate/verify", validators.VerifyCertificate(), h.VerifyCertificate)
}
