package middlewares

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/HimanshuSagar02/RCR-backend/internal/repository"
	"github.com/HimanshuSagar02/RCR-backend/internal/utils"
)

// UserIDKey is where the session middleware stores the authenticated user id.
const UserIDKey = "userID"

// CookieName is the session cookie carrying the signed token.
const CookieName = "token"

// RequireAuth verifies the cookie-borne session token on every request and
// attaches the resolved user id to the request context. Every request is
// independently verified; no session state is kept server-side.
func RequireAuth(tokens *utils.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required. Please login.",
			})
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrTokenExpired):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Token expired. Please login again.",
				})
			case errors.Is(err, utils.ErrMalformedToken):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid token format",
				})
			case errors.Is(err, utils.ErrMissingSecret):
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Server configuration error",
				})
			default:
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid token. Please login again.",
				})
			}
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// RequireRoles loads the authenticated user and rejects the request unless
// its role is one of the allowed ones. Must run after RequireAuth.
func RequireRoles(repo repository.UserRepository, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(UserIDKey).(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required. Please login.",
			})
		}
		user, err := repo.FindByID(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token. Please login again.",
			})
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Access denied",
		})
	}
}
