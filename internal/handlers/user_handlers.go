package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HimanshuSagar02/RCR-backend/internal/middlewares"
)

// Me returns the sanitized account of the authenticated user.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.UserIDKey).(string)
	user, err := h.svc.CurrentUser(c.Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}
