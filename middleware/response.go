package middleware

import (
	"errors"
	"log"

	"institute/errdefs"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errdefs.ErrValidationFailed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, errdefs.ErrBadRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, errdefs.ErrInvalidToken),
		errors.Is(err, errdefs.ErrSubmissionNotFound),
		errors.Is(err, errdefs.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errdefs.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, errdefs.ErrInvalidTransition),
		errors.Is(err, errdefs.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, errdefs.ErrUpstreamFailure):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse writes err in the standard envelope with its taxonomy code.
// Internal errors are logged and replaced by a generic message.
func ErrorResponse(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		message = "Internal server error!"
	}
	return JsonResponse(c, status, false, message, fiber.Map{"code": errdefs.Code(err)})
}
