package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/middleware"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/gofiber/fiber/v2"
)

const refreshCookie = "sip_refresh"

type AuthHandler struct {
	authService  *service.AuthService
	secureCookie bool
}

func NewAuthHandler(authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, expires time.Time, httpOnly bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: httpOnly,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) writeSession(c *fiber.Ctx, status int, sess *service.AuthSession) error {
	h.setCookie(c, middleware.AccessCookie, sess.AccessToken, sess.AccessExpiresAt, true)
	h.setCookie(c, refreshCookie, sess.RefreshToken, sess.RefreshExpiresAt, true)
	return c.Status(status).JSON(sess)
}

func (h *AuthHandler) clearSession(c *fiber.Ctx) {
	expired := time.Unix(0, 0)
	h.setCookie(c, middleware.AccessCookie, "", expired, true)
	h.setCookie(c, refreshCookie, "", expired, true)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" || input.Username == "" {
		return httpx.BadRequest(c, "missing_fields", "Email, username, and password are required")
	}

	result, err := h.authService.Register(input)
	if err != nil {
		return httpx.ServiceError(c, err, "register_failed")
	}

	return h.writeSession(c, fiber.StatusCreated, result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_fields", "Email and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		return httpx.ServiceError(c, err, "login_failed")
	}

	return h.writeSession(c, fiber.StatusOK, result)
}

// refreshToken prefers the HttpOnly cookie; mobile clients send it in the body.
func refreshToken(c *fiber.Ctx) string {
	if v := c.Cookies(refreshCookie); v != "" {
		return v
	}
	var input refreshInput
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&input)
	}
	return strings.TrimSpace(input.RefreshToken)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	raw := refreshToken(c)
	if raw == "" {
		return httpx.Unauthorized(c, "missing_refresh_token", "Missing refresh token")
	}

	result, err := h.authService.RefreshSession(raw)
	if err != nil {
		h.clearSession(c)
		return httpx.ServiceError(c, err, "refresh_failed")
	}

	return h.writeSession(c, fiber.StatusOK, result)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if raw := refreshToken(c); raw != "" {
		if err := h.authService.Logout(raw); err != nil {
			return httpx.ServiceError(c, err, "logout_failed")
		}
	}
	h.clearSession(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// CSRF issues a double-submit token readable by browser scripts.
func (h *AuthHandler) CSRF(c *fiber.Ctx) error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return httpx.Internal(c, "csrf_failed")
	}
	token := hex.EncodeToString(buf)
	h.setCookie(c, middleware.CSRFCookie, token, time.Now().Add(24*time.Hour), false)
	return c.JSON(fiber.Map{"csrf_token": token})
}
