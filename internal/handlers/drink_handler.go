package handlers

import (
	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/gofiber/fiber/v2"
)

type DrinkHandler struct {
	drinkService *service.DrinkService
}

func NewDrinkHandler(drinkService *service.DrinkService) *DrinkHandler {
	return &DrinkHandler{drinkService: drinkService}
}

// LogDrink records a drink. An empty body logs one now with the default goal.
func (h *DrinkHandler) LogDrink(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.LogDrinkInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
		}
	}

	drink, err := h.drinkService.LogDrink(c.UserContext(), sess, input)
	if err != nil {
		return httpx.ServiceError(c, err, "log_drink_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"drink": drink.ToResponse(),
	})
}

func (h *DrinkHandler) Latest(c *fiber.Ctx) error {
	sess, err := httpx.RequireSession(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	drink, err := h.drinkService.Latest(sess)
	if err != nil {
		return httpx.ServiceError(c, err, "latest_drink_failed")
	}
	if drink == nil {
		return c.JSON(fiber.Map{"drink": nil})
	}
	return c.JSON(fiber.Map{"drink": drink.ToResponse()})
}
