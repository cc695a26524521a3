package assignmentValidator

import (
	"fmt"
	"strings"
	"time"

	"institute/errdefs"
	"institute/middleware"
	"institute/services/dispatcher"
	"institute/validators"

	"github.com/gofiber/fiber/v2"
)

const dueDateLayout = "2006-01-02"

// CreateAssignment validates the create-and-dispatch request body.
func CreateAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Batch       string `json:"batch" validate:"notblank,singleline,max=64"`
			Course      string `json:"course" validate:"notblank,singleline,max=128"`
			Title       string `json:"title" validate:"notblank,singleline,max=255"`
			Description string `json:"description" validate:"max=5000"`
			DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.DueDate = strings.TrimSpace(reqData.DueDate)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		due, _ := time.ParseInLocation(dueDateLayout, reqData.DueDate, time.Local)
		c.Locals("validatedTask", &dispatcher.CreateTaskInput{
			Batch:       strings.TrimSpace(reqData.Batch),
			Course:      strings.TrimSpace(reqData.Course),
			Title:       strings.TrimSpace(reqData.Title),
			Description: strings.TrimSpace(reqData.Description),
			DueDate:     due,
		})
		return c.Next()
	}
}

// TaskParams validates the :id path parameter.
func TaskParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		taskID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid assignment ID!", nil)
		}
		c.Locals("taskID", taskID)
		return c.Next()
	}
}

// Redispatch accepts an optional {"student_ids": [...]} body.
func Redispatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			StudentIDs []uint `json:"student_ids" validate:"omitempty,max=1000,dive,gt=0"`
		})
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("studentIDs", reqData.StudentIDs)
		return c.Next()
	}
}

// SubmissionParams validates :id and :student_id for reviewer actions.
func SubmissionParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		taskID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid assignment ID!", nil)
		}
		studentID, ok := validators.ParamID(c, "student_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid student ID!", nil)
		}
		c.Locals("taskID", taskID)
		c.Locals("studentID", studentID)
		return c.Next()
	}
}

// Remark validates the reviewer remark body.
func Remark() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Remark string `json:"remark" validate:"notblank,max=2000"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("remark", strings.TrimSpace(reqData.Remark))
		return c.Next()
	}
}

// LinkParams reads the token, student id and optional signature of an assignment link.
// A malformed link is reported like an unknown token.
func LinkParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Params("token"))
		studentID, ok := validators.ParamID(c, "student_id")
		if token == "" || !ok {
			return middleware.ErrorResponse(c, errdefs.ErrInvalidToken)
		}
		c.Locals("token", token)
		c.Locals("studentID", studentID)
		c.Locals("sig", c.Query("sig"))
		return c.Next()
	}
}

// SubmitAssignment requires a multipart "file" of at most maxBytes.
func SubmitAssignment(maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "file is required"})
		}
		if file.Size == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "file is empty"})
		}
		if maxBytes > 0 && file.Size > maxBytes {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"file": fmt.Sprintf("file must be at most %d MB", maxBytes>>20),
			})
		}
		c.Locals("upload", file)
		return c.Next()
	}
}
