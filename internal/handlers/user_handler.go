package handlers

import (
	"fmt"
	"strings"

	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/AnemiB/SipStop/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService   *service.UserService
	exportService *service.ExportService
}

func NewUserHandler(userService *service.UserService, exportService *service.ExportService) *UserHandler {
	return &UserHandler{userService: userService, exportService: exportService}
}

// CheckUsername checks if a username is available
func (h *UserHandler) CheckUsername(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return httpx.BadRequest(c, "missing_username", "Username is required")
	}
	username = validation.NormalizeUsername(username)
	if !validation.ValidateUsername(username) {
		return httpx.BadRequest(c, "invalid_username", "Invalid username")
	}

	available, err := h.userService.IsUsernameAvailable(username)
	if err != nil {
		return httpx.Internal(c, "check_username_failed")
	}

	return c.JSON(fiber.Map{
		"available": available,
	})
}

// GetCurrentUser gets the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userService.GetCurrentUser(sess)
	if err != nil {
		return httpx.ServiceError(c, err, "get_user_failed")
	}

	// ETag allows clients to re-check frequently without re-downloading.
	etag := fmt.Sprintf("W/\"u-%s-%d\"", user.ID, user.UpdatedAt.UTC().UnixNano())
	c.Set("ETag", etag)
	c.Set("Cache-Control", "private, max-age=0, must-revalidate")

	if inm := strings.TrimSpace(c.Get("If-None-Match")); inm != "" {
		inmNorm := strings.Trim(strings.TrimPrefix(inm, "W/"), "\"")
		etagNorm := strings.Trim(strings.TrimPrefix(etag, "W/"), "\"")
		if strings.Contains(inmNorm, etagNorm) {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}

	return c.JSON(fiber.Map{
		"user": user.ToResponse(),
	})
}

// UpdateProfile changes the username
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	u := validation.NormalizeUsername(input.Username)
	if !validation.ValidateUsername(u) {
		return httpx.BadRequest(c, "invalid_username", "Invalid username")
	}
	input.Username = u

	user, err := h.userService.UpdateProfile(sess, input)
	if err != nil {
		return httpx.ServiceError(c, err, "update_profile_failed")
	}

	return c.JSON(fiber.Map{
		"user": user.ToResponse(),
	})
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.userService.ChangePassword(sess, input); err != nil {
		return httpx.ServiceError(c, err, "change_password_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) RegisterPushToken(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.PushTokenInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.userService.RegisterPushToken(sess, input); err != nil {
		return httpx.ServiceError(c, err, "register_push_token_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export uploads the user's journal and returns a download link.
func (h *UserHandler) Export(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	result, err := h.exportService.Export(c.UserContext(), sess)
	if err != nil {
		return httpx.ServiceError(c, err, "export_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
