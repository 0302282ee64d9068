package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HimanshuSagar02/RCR-backend/internal/handlers"
	"github.com/HimanshuSagar02/RCR-backend/internal/middlewares"
	"github.com/HimanshuSagar02/RCR-backend/internal/models"
	"github.com/HimanshuSagar02/RCR-backend/internal/repository"
	"github.com/HimanshuSagar02/RCR-backend/internal/utils"
)

// Setup mounts all route groups on the app.
func Setup(
	app *fiber.App,
	h *handlers.Handler,
	diag *handlers.DiagHandler,
	tokens *utils.TokenManager,
	repo repository.UserRepository,
) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Server Running Successfully")
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", h.SignUp)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Post("/google", h.GoogleAuth)
	auth.Post("/send-otp", h.SendOTP)
	auth.Post("/verify-otp", h.VerifyOTP)
	auth.Post("/reset-password", h.ResetPassword)

	requireAuth := middlewares.RequireAuth(tokens)

	user := api.Group("/user")
	user.Get("/me", requireAuth, h.Me)

	if diag != nil {
		test := api.Group("/test")
		test.Get("/db", diag.DBStatus)
		test.Get("/users", requireAuth, middlewares.RequireRoles(repo, models.RoleAdmin), diag.Users)
	}
}
