package assignmentController

import (
	"institute/middleware"
	"institute/services/dispatcher"
	"institute/services/submission"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the assignment routes.
type Handler struct {
	Dispatcher     *dispatcher.Dispatcher
	Submissions    *submission.Service
	MaxUploadBytes int64
}

// CreateAssignment creates the task and mails every student of its batch.
func (h *Handler) CreateAssignment(c *fiber.Ctx) error {
	input := c.Locals("validatedTask").(*dispatcher.CreateTaskInput)

	result, err := h.Dispatcher.CreateAndDispatch(c.UserContext(), *input)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment created and dispatched!", fiber.Map{
		"task_id":      result.Task.ID,
		"access_token": result.Task.AccessToken,
		"summary":      result.Summary,
		"receipts":     result.Receipts,
	})
}

// RedispatchAssignment mails the task again to some or all of the batch.
func (h *Handler) RedispatchAssignment(c *fiber.Ctx) error {
	taskID := c.Locals("taskID").(uint)
	studentIDs, _ := c.Locals("studentIDs").([]uint)

	result, err := h.Dispatcher.Redispatch(c.UserContext(), taskID, studentIDs)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment dispatched again!", fiber.Map{
		"task_id":  result.Task.ID,
		"summary":  result.Summary,
		"receipts": result.Receipts,
	})
}

func (h *Handler) GetReceipts(c *fiber.Ctx) error {
	taskID := c.Locals("taskID").(uint)

	result, err := h.Dispatcher.Receipts(c.UserContext(), taskID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Delivery receipts fetched successfully!", fiber.Map{
		"task_id":  result.Task.ID,
		"summary":  result.Summary,
		"receipts": result.Receipts,
	})
}

func (h *Handler) ListSubmissions(c *fiber.Ctx) error {
	taskID := c.Locals("taskID").(uint)

	listing, err := h.Submissions.ListByTask(c.UserContext(), taskID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", fiber.Map{
		"task":        listing.Task,
		"submissions": listing.Submissions,
		"total":       len(listing.Submissions),
	})
}

// RemarkSubmission stores reviewer feedback and mails it to the student.
func (h *Handler) RemarkSubmission(c *fiber.Ctx) error {
	taskID := c.Locals("taskID").(uint)
	studentID := c.Locals("studentID").(uint)
	remark := c.Locals("remark").(string)

	result, err := h.Submissions.Remark(c.UserContext(), taskID, studentID, remark)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Remark saved successfully!", result)
}

func (h *Handler) CompleteSubmission(c *fiber.Ctx) error {
	taskID := c.Locals("taskID").(uint)
	studentID := c.Locals("studentID").(uint)

	result, err := h.Submissions.Complete(c.UserContext(), taskID, studentID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission marked as completed!", result)
}
