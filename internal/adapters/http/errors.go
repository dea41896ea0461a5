package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "unprocessable", msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, "bad_gateway", msg)
}

func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// writeError maps domain errors onto HTTP responses. Unexpected errors
// are logged and reported without detail.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrMapNotFound):
		return errNotFound(c, "map not found")
	case errors.Is(err, domain.ErrNoRenderableRoutes):
		return errUnprocessable(c, err.Error())
	case errors.Is(err, domain.ErrNoRows),
		errors.Is(err, domain.ErrInvalidRow),
		errors.Is(err, domain.ErrMalformedCoordinate),
		errors.Is(err, domain.ErrInvalidPointCount):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrGeocoderFailed):
		return errBadGateway(c, "geocoding service unavailable, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		return newError(c, fiber.StatusGatewayTimeout, "timeout", "request timed out")
	}
	logging.FromContext(c.UserContext()).Error("request failed",
		"method", c.Method(), "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
