package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/modules/task"
)

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch domain.Kind(err) {
	case domain.ErrInvalidInput:
		return fiber.StatusBadRequest
	case domain.ErrNotFound:
		return fiber.StatusNotFound
	case domain.ErrConflict:
		return fiber.StatusConflict
	case domain.ErrCapacityExceeded:
		return fiber.StatusUnprocessableEntity
	case domain.ErrDependencyFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err with the status and code of its kind.
func writeError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(ErrorResponse{
		Error:   task.ErrorCode(err),
		Message: err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "validation_error",
		Message: message,
	})
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
