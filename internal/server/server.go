package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/HimanshuSagar02/RCR-backend/internal/config"
	"github.com/HimanshuSagar02/RCR-backend/internal/handlers"
	"github.com/HimanshuSagar02/RCR-backend/internal/middlewares"
	"github.com/HimanshuSagar02/RCR-backend/internal/repository"
	"github.com/HimanshuSagar02/RCR-backend/internal/routes"
	"github.com/HimanshuSagar02/RCR-backend/internal/utils"
)

// New initializes the Fiber application with config, middlewares, and routes.
func New(
	cfg *config.Config,
	h *handlers.Handler,
	diag *handlers.DiagHandler,
	tokens *utils.TokenManager,
	repo repository.UserRepository,
	logger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins(cfg), ","),
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,X-Requested-With",
		ExposeHeaders:    "Set-Cookie",
	}))
	app.Use(middlewares.RequestLogger(logger))

	routes.Setup(app, h, diag, tokens, repo)

	return app
}

// allowedOrigins is the cross-origin allow list: the known frontends plus the
// local dev servers, extended by FRONTEND_URL when set.
func allowedOrigins(cfg *config.Config) []string {
	origins := []string{
		"https://rajchemreactor.netlify.app",
		"http://localhost:5175",
		"http://localhost:3000",
	}
	if cfg.App.FrontendURL != "" {
		origins = append(origins, cfg.App.FrontendURL)
	}
	return origins
}
