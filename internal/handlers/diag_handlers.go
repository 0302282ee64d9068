package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HimanshuSagar02/RCR-backend/internal/repository"
)

// DiagHandler exposes operational diagnostics: store connectivity and a small
// user sample for admins.
type DiagHandler struct {
	client *mongo.Client
	repo   repository.UserRepository
	dbName string
}

func NewDiagHandler(client *mongo.Client, repo repository.UserRepository, dbName string) *DiagHandler {
	return &DiagHandler{client: client, repo: repo, dbName: dbName}
}

// DBStatus pings the document store and reports connection health.
func (h *DiagHandler) DBStatus(c *fiber.Ctx) error {
	if err := h.client.Ping(c.Context(), nil); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"status":  "disconnected",
			"message": "Database is not connected",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"status":   "connected",
		"message":  "Database is connected",
		"database": h.dbName,
	})
}

// Users returns the user count plus a five-user sample without credentials.
func (h *DiagHandler) Users(c *fiber.Ctx) error {
	count, err := h.repo.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "User query failed",
			"error":   err.Error(),
		})
	}
	sample, err := h.repo.Sample(c.Context(), 5)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "User query failed",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":     true,
		"totalUsers":  count,
		"sampleUsers": sample,
		"message":     "User query successful",
	})
}
