package httpx

import (
	"errors"

	"github.com/AnemiB/SipStop/internal/service"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionKey is the fiber local holding the caller's session.Session.
const SessionKey = "session"

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, code string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID(c),
	})
}

func BadRequest(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

func Unauthorized(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusUnauthorized, code, message)
}

func Forbidden(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusForbidden, code, message)
}

func NotFound(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusNotFound, code, message)
}

func Internal(c *fiber.Ctx, code string) error {
	return Error(c, fiber.StatusInternalServerError, code, "Internal server error")
}

// ServiceError maps a service error onto the envelope. Unknown errors are
// logged and reported as 500 with the given fallback code.
func ServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return Unauthorized(c, "unauthorized", "Unauthorized")
	case errors.Is(err, service.ErrInvalidCredentials):
		return Unauthorized(c, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, service.ErrInvalidRefreshSession):
		return Unauthorized(c, "invalid_refresh_token", "Invalid or expired session")
	case errors.Is(err, service.ErrInvalidInput):
		return BadRequest(c, "invalid_input", err.Error())
	case errors.Is(err, service.ErrForbidden):
		return Forbidden(c, "forbidden", "Forbidden")
	case errors.Is(err, service.ErrNotFound):
		return NotFound(c, "not_found", "Not found")
	case errors.Is(err, service.ErrConflict):
		return Error(c, fiber.StatusConflict, "conflict", err.Error())
	case errors.Is(err, service.ErrStorageNotConfigured):
		return Error(c, fiber.StatusServiceUnavailable, "storage_unavailable", "Storage is not configured")
	}
	logrus.WithError(err).WithField("request_id", requestID(c)).Error(fallback)
	return Internal(c, fallback)
}

// Session returns the caller's session. Routes without auth middleware get
// the anonymous session.
func Session(c *fiber.Ctx) session.Session {
	if v, ok := c.Locals(SessionKey).(session.Session); ok {
		return v
	}
	return session.Session{}
}

// RequireSession is Session for routes that must be signed in.
func RequireSession(c *fiber.Ctx) (session.Session, error) {
	sess := Session(c)
	return sess, sess.Require()
}
