package assignmentController

import (
	"fmt"
	"mime/multipart"

	"institute/errdefs"
	"institute/middleware"
	"institute/services/submission"
	"institute/utils"

	"github.com/gofiber/fiber/v2"
)

// ViewAssignment returns the task and the student's current state for the link page.
func (h *Handler) ViewAssignment(c *fiber.Ctx) error {
	token := c.Locals("token").(string)
	studentID := c.Locals("studentID").(uint)
	sig := c.Locals("sig").(string)

	view, err := h.Submissions.View(c.UserContext(), token, studentID, sig)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment fetched successfully!", fiber.Map{
		"title":       view.Task.Title,
		"course":      view.Task.Course,
		"description": view.Task.Description,
		"due_date":    view.Task.DueTime().Format("2006-01-02"),
		"state":       view.State,
		"submission":  view.Submission,
	})
}

// SubmitAssignment uploads the student's file for the task behind the link.
func (h *Handler) SubmitAssignment(c *fiber.Ctx) error {
	token := c.Locals("token").(string)
	studentID := c.Locals("studentID").(uint)
	sig := c.Locals("sig").(string)
	file := c.Locals("upload").(*multipart.FileHeader)

	data, name, err := utils.ReadUploadedFile(file, h.MaxUploadBytes)
	if err != nil {
		return middleware.ErrorResponse(c, fmt.Errorf("%w: %v", errdefs.ErrValidationFailed, err))
	}

	result, err := h.Submissions.Submit(c.UserContext(), token, studentID, sig, submission.Upload{Filename: name, Data: data})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment submitted successfully!", fiber.Map{
		"file_url":     result.Submission.FileURL,
		"submitted_at": result.Submission.SubmittedAt,
		"state":        result.State,
	})
}
