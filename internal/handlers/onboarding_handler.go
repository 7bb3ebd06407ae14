package handlers

import (
	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/gofiber/fiber/v2"
)

// OnboardingHandler never fails: storage problems are absorbed by the service.
type OnboardingHandler struct {
	onboardingService *service.OnboardingService
}

func NewOnboardingHandler(onboardingService *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

func (h *OnboardingHandler) State(c *fiber.Ctx) error {
	return c.JSON(h.onboardingService.State(httpx.Session(c)))
}

func (h *OnboardingHandler) MarkSeen(c *fiber.Ctx) error {
	return c.JSON(h.onboardingService.MarkSeen(httpx.Session(c)))
}
