package handlers

import (
	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/gofiber/fiber/v2"
)

type HomeHandler struct {
	encouragementService *service.EncouragementService
}

func NewHomeHandler(encouragementService *service.EncouragementService) *HomeHandler {
	return &HomeHandler{encouragementService: encouragementService}
}

func (h *HomeHandler) Home(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	home, err := h.encouragementService.Home(sess)
	if err != nil {
		return httpx.ServiceError(c, err, "home_failed")
	}
	return c.JSON(home)
}

func (h *HomeHandler) Encouragement(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	view, err := h.encouragementService.Render(sess)
	if err != nil {
		return httpx.ServiceError(c, err, "encouragement_failed")
	}
	return c.JSON(view)
}
