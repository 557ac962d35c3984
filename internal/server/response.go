package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func success(c *fiber.Ctx, message string, meta, data any) error {
	return c.Status(fiber.StatusOK).JSON(successResponse{
		Success: true,
		Message: message,
		Meta:    meta,
		Data:    data,
	})
}

func failure(c *fiber.Ctx, code int, message, requestID string) error {
	return c.Status(code).JSON(errorResponse{
		Message:   message,
		RequestID: requestID,
	})
}

// errorHandler renders errors that escaped the handlers, including fiber's own.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	message := err.Error()
	if message == "" {
		message = "Internal Server Error"
	}

	return failure(c, code, message, "")
}
