package assignmentRoutes

import (
	controllers "institute/controllers/assignmentControllers"
	"institute/middleware"
	validators "institute/validators/assignment"

	"github.com/gofiber/fiber/v2"
)

// SetupAssignmentRoutes registers the reviewer routes and the student link routes.
func SetupAssignmentRoutes(app *fiber.App, h *controllers.Handler) {
	adminGroup := app.Group("/admin/assignment", middleware.JWTMiddleware, middleware.RequireRole(middleware.RoleAdmin))

	adminGroup.Post("/create", validators.CreateAssignment(), h.CreateAssignment)
	adminGroup.Post("/:id/redispatch", validators.TaskParams(), validators.Redispatch(), h.RedispatchAssignment)
	adminGroup.Get("/:id/receipts", validators.TaskParams(), h.GetReceipts)
	adminGroup.Get("/:id/submissions", validators.TaskParams(), h.ListSubmissions)
	adminGroup.Post("/:id/student/:student_id/remark", validators.SubmissionParams(), validators.Remark(), h.RemarkSubmission)
	adminGroup.Post("/:id/student/:student_id/complete", validators.SubmissionParams(), h.CompleteSubmission)

	// Links mailed to students; the token is the only credential.
	studentGroup := app.Group("/assignment")
	studentGroup.Get("/:token/:student_id", validators.LinkParams(), h.ViewAssignment)
	studentGroup.Post("/:token/:student_id/submit", validators.LinkParams(), validators.SubmitAssignment(h.MaxUploadBytes), h.SubmitAssignment)
}
