package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/HimanshuSagar02/RCR-backend/internal/middlewares"
	"github.com/HimanshuSagar02/RCR-backend/internal/services"
)

// Handler maps HTTP requests onto the auth service and owns the session
// cookie contract.
type Handler struct {
	svc       services.AuthService
	logger    *zap.Logger
	isProd    bool
	cookieTTL time.Duration
}

func NewHandler(svc services.AuthService, logger *zap.Logger, isProd bool, cookieTTL time.Duration) *Handler {
	return &Handler{svc: svc, logger: logger, isProd: isProd, cookieTTL: cookieTTL}
}

type signUpReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Class    string `json:"class"`
	Subject  string `json:"subject"`
}

func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req signUpReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	user, token, err := h.svc.SignUp(c.Context(), services.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Class:    req.Class,
		Subject:  req.Subject,
	})
	if err != nil {
		return h.fail(c, err)
	}
	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(user)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	user, token, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	h.clearSessionCookie(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logOut Successfully"})
}

type googleReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	PhotoURL string `json:"photoUrl"`
	Class    string `json:"class"`
	Subject  string `json:"subject"`
}

func (h *Handler) GoogleAuth(c *fiber.Ctx) error {
	var req googleReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	user, token, err := h.svc.GoogleAuth(c.Context(), services.GoogleInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		PhotoURL: req.PhotoURL,
		Class:    req.Class,
		Subject:  req.Subject,
	})
	if err != nil {
		return h.fail(c, err)
	}
	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusOK).JSON(user)
}

type sendOTPReq struct {
	Email string `json:"email"`
}

func (h *Handler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if err := h.svc.SendOTP(c.Context(), req.Email); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "OTP sent successfully to your email"})
}

type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if err := h.svc.VerifyOTP(c.Context(), req.Email, req.OTP); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "OTP verified successfully. You can now reset your password.",
	})
}

type resetPasswordReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if err := h.svc.ResetPassword(c.Context(), req.Email, req.Password); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Password Reset Successfully"})
}

// setSessionCookie places the signed token in an HTTP-only cookie. In
// production the cookie is Secure with SameSite=None for cross-site frontends;
// in development it stays Lax over plain HTTP.
func (h *Handler) setSessionCookie(c *fiber.Ctx, token string) {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.isProd {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.isProd,
		SameSite: sameSite,
	})
}

func (h *Handler) clearSessionCookie(c *fiber.Ctx) {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.isProd {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.isProd,
		SameSite: sameSite,
	})
}

var badRequestErrs = []error{
	services.ErrEmailExists,
	services.ErrInvalidEmail,
	services.ErrWeakPassword,
	services.ErrClassRequired,
	services.ErrMissingCredentials,
	services.ErrEmailRequired,
	services.ErrOTPFieldsRequired,
	services.ErrUserNotExist,
	services.ErrIncorrectPassword,
	services.ErrNoOTP,
	services.ErrInvalidOTP,
	services.ErrOTPExpired,
	services.ErrOTPNotVerified,
}

// fail translates service errors into the HTTP error taxonomy: validation
// 400, not-found 404, status gates 403, rate limit 429, everything else 500.
// Unexpected errors only carry detail outside production.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrNeedsPasswordReset) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":            err.Error(),
			"needsPasswordReset": true,
		})
	}
	for _, e := range badRequestErrs {
		if errors.Is(err, e) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	}
	switch {
	case errors.Is(err, services.ErrAccountPending), errors.Is(err, services.ErrAccountRejected):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, services.ErrOTPRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, services.ErrMailSend):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	h.logger.Error("unexpected handler error", zap.String("path", c.Path()), zap.Error(err))
	if h.isProd {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
