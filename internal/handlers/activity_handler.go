package handlers

import (
	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Unseen lists the caller's notes with comments they have not opened yet.
func (h *ActivityHandler) Unseen(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	unseen, err := h.activityService.Unseen(sess)
	if err != nil {
		return httpx.ServiceError(c, err, "unseen_failed")
	}
	if unseen == nil {
		unseen = []string{}
	}
	return c.JSON(fiber.Map{"unseen": unseen})
}
