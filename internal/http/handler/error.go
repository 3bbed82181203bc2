package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docgateway/internal/http/middleware"
	"docgateway/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusErrors are the envelopes the global handler answers with, keyed by status.
var statusErrors = map[int]errorEnvelope{
	fiber.StatusBadRequest:            {Code: "BAD_REQUEST", Message: "bad request"},
	fiber.StatusNotFound:              {Code: "NOT_FOUND", Message: "resource not found"},
	fiber.StatusMethodNotAllowed:      {Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {Code: "FILE_TOO_LARGE", Message: "uploaded file exceeds the size limit"},
	fiber.StatusUnsupportedMediaType:  {Code: "UNSUPPORTED_MEDIA_TYPE", Message: "expected multipart/form-data"},
	fiber.StatusServiceUnavailable:    {Code: "SERVICE_UNAVAILABLE", Message: "service temporarily unavailable"},
}

var internalError = errorEnvelope{Code: "INTERNAL_ERROR", Message: "internal server error"}

func requestIDFromCtx(c *fiber.Ctx) string {
	s, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return s
}

// writeError writes a standardized JSON error response without leaking internal errors.
// code is machine-readable (e.g. "FILE_REQUIRED", "LEDGER_UNAVAILABLE"); message is safe for clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// writeLedgerError answers a failed ledger lookup. The ledger is an optional
// index, so its outages surface as 503 rather than 500.
func writeLedgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrLedgerUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "document index is unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, internalError.Code, internalError.Message)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		env, ok := statusErrors[status]
		if !ok {
			env = internalError
		}
		return writeError(c, status, env.Code, env.Message)
	}
}
