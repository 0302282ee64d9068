package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/HimanshuSagar02/RCR-backend/internal/mailer"
	"github.com/HimanshuSagar02/RCR-backend/internal/models"
	"github.com/HimanshuSagar02/RCR-backend/internal/repository"
	"github.com/HimanshuSagar02/RCR-backend/internal/utils"
)

const (
	otpLength          = 4
	otpRateLimitPrefix = "otp_rate_limit:"
)

type authService struct {
	userRepo     repository.UserRepository
	mail         mailer.Mailer
	redisClient  *redis.Client
	tokens       *utils.TokenManager
	otpTTL       time.Duration
	otpRateLimit int
	hashCost     int
	logger       *zap.Logger
}

// NewAuthService wires the auth flows. redisClient may be nil, in which case
// OTP request rate limiting is skipped.
func NewAuthService(
	userRepo repository.UserRepository,
	mail mailer.Mailer,
	redisClient *redis.Client,
	tokens *utils.TokenManager,
	otpTTL time.Duration,
	otpRateLimit int,
	hashCost int,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		mail:         mail,
		redisClient:  redisClient,
		tokens:       tokens,
		otpTTL:       otpTTL,
		otpRateLimit: otpRateLimit,
		hashCost:     hashCost,
		logger:       logger,
	}
}

// SignUp registers a new account. Accounts start pending until an admin
// approves them, but a session token is issued immediately.
func (s *authService) SignUp(ctx context.Context, in SignUpInput) (*models.User, string, error) {
	email := utils.NormalizeEmail(in.Email)

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if !utils.IsEmail(email) {
		return nil, "", ErrInvalidEmail
	}
	if len(in.Password) < 6 {
		return nil, "", ErrWeakPassword
	}

	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role == models.RoleStudent && in.Class == "" {
		return nil, "", ErrClassRequired
	}

	digest, err := utils.HashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:           in.Name,
		Email:          email,
		Password:       digest,
		Role:           role,
		Status:         models.StatusPending,
		CreatedByAdmin: false,
	}
	if role == models.RoleStudent {
		user.Class = in.Class
		user.Subject = in.Subject
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login authenticates an email/password pair, applying the admin-approval
// status gate before any credential check result is acted on.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}
	email = utils.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrUserNotExist
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := statusGate(user); err != nil {
		return nil, "", err
	}
	if !user.HasPassword() {
		return nil, "", ErrNeedsPasswordReset
	}
	if err := utils.CheckPassword(user.Password, password); err != nil {
		return nil, "", ErrIncorrectPassword
	}

	s.touchLastLogin(ctx, user)

	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// GoogleAuth handles both first sign-in (account creation, auto-approved) and
// returning users (profile refresh) before applying the same status gate as
// manual login.
func (s *authService) GoogleAuth(ctx context.Context, in GoogleInput) (*models.User, string, error) {
	if in.Email == "" {
		return nil, "", ErrEmailRequired
	}
	email := utils.NormalizeEmail(in.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		role := in.Role
		if role == "" {
			role = models.RoleStudent
		}
		if role == models.RoleStudent && in.Class == "" {
			return nil, "", ErrClassRequired
		}
		name := in.Name
		if name == "" {
			name = "User"
		}
		user = &models.User{
			Name:           name,
			Email:          email,
			Role:           role,
			PhotoURL:       in.PhotoURL,
			Status:         models.StatusApproved,
			CreatedByAdmin: false,
		}
		if role == models.RoleStudent {
			user.Class = in.Class
			user.Subject = in.Subject
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	default:
		now := time.Now()
		user.LastLoginAt = &now
		if in.PhotoURL != "" && user.PhotoURL == "" {
			user.PhotoURL = in.PhotoURL
		}
		if in.Name != "" && user.Name != in.Name {
			user.Name = in.Name
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to update user: %w", err)
		}
	}

	if err := statusGate(user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// SendOTP issues a fresh 4-digit code with an absolute expiry, persists it,
// then dispatches it by email. A mail failure is reported distinctly from a
// persistence failure.
func (s *authService) SendOTP(ctx context.Context, email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	email = utils.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.checkOTPRateLimit(ctx, email); err != nil {
		return err
	}

	otp := utils.GenerateOTP(otpLength)
	expires := time.Now().Add(s.otpTTL)
	user.ResetOTP = otp
	user.OTPExpires = &expires
	user.IsOtpVerified = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	if err := s.mail.SendOTP(ctx, email, user.Name, otp); err != nil {
		s.logger.Error("OTP email send failed", zap.String("email", email), zap.Error(err))
		return ErrMailSend
	}
	return nil
}

// VerifyOTP checks a previously issued code. Each failure mode gets a
// distinct message. On success the code is retained until the password is
// actually reset.
func (s *authService) VerifyOTP(ctx context.Context, email, otp string) error {
	if email == "" || otp == "" {
		return ErrOTPFieldsRequired
	}
	email = utils.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.ResetOTP == "" {
		return ErrNoOTP
	}
	if user.ResetOTP != otp {
		return ErrInvalidOTP
	}
	if user.OTPExpires == nil || user.OTPExpires.Before(time.Now()) {
		return ErrOTPExpired
	}

	user.IsOtpVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update OTP state: %w", err)
	}
	return nil
}

// ResetPassword stores a new digest when the account either has no password
// yet (bootstrap case for Google-only accounts) or has passed OTP
// verification. OTP state is cleared afterwards — single-use semantics.
func (s *authService) ResetPassword(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	if len(password) < 6 {
		return ErrWeakPassword
	}
	email = utils.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.HasPassword() && !user.IsOtpVerified {
		return ErrOTPNotVerified
	}

	digest, err := utils.HashPassword(password, s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = digest
	user.ResetOTP = ""
	user.OTPExpires = nil
	user.IsOtpVerified = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}
	return nil
}

// CurrentUser resolves the identity attached by the session middleware.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func statusGate(user *models.User) error {
	switch user.Status {
	case models.StatusPending:
		return ErrAccountPending
	case models.StatusRejected:
		return ErrAccountRejected
	}
	return nil
}

// checkOTPRateLimit caps OTP requests per email per hour via Redis. Skipped
// entirely when Redis is not configured.
func (s *authService) checkOTPRateLimit(ctx context.Context, email string) error {
	if s.redisClient == nil || s.otpRateLimit <= 0 {
		return nil
	}
	key := otpRateLimitPrefix + email
	count, err := s.redisClient.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn("OTP rate limit check failed, allowing request", zap.Error(err))
		return nil
	}
	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, time.Hour).Err(); err != nil {
			s.logger.Warn("failed to set OTP rate limit expiry", zap.Error(err))
		}
	} else if count > int64(s.otpRateLimit) {
		s.redisClient.Decr(ctx, key)
		return ErrOTPRateLimited
	}
	return nil
}

// touchLastLogin records the login timestamp; a store failure here must not
// fail an otherwise successful authentication.
func (s *authService) touchLastLogin(ctx context.Context, user *models.User) {
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("failed to update last login time",
			zap.String("userId", user.ID.Hex()), zap.Error(err))
	}
}
