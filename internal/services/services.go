package services

import (
	"context"
	"errors"

	"github.com/HimanshuSagar02/RCR-backend/internal/models"
)

// Sentinel errors for every failure the auth flows can report. The strings
// are user-facing messages and part of the HTTP contract, so they keep the
// exact wording clients already match on.
var (
	ErrEmailExists        = errors.New("email already exist")
	ErrInvalidEmail       = errors.New("Please enter valid Email")
	ErrWeakPassword       = errors.New("Password must be at least 6 characters")
	ErrClassRequired      = errors.New("Class/Grade is mandatory for students. Please select 9th, 10th, 11th, 12th, or NEET Dropper")
	ErrMissingCredentials = errors.New("Email and password are required")
	ErrEmailRequired      = errors.New("Email is required")
	ErrOTPFieldsRequired  = errors.New("Email and OTP are required")
	ErrUserNotExist       = errors.New("User does not exist")
	ErrUserNotFound       = errors.New("User not found")
	ErrAccountPending     = errors.New("Account pending approval by admin")
	ErrAccountRejected    = errors.New("Account rejected by admin")
	ErrNeedsPasswordReset = errors.New("This account does not have a password set. Please use 'Forgot Password' to set a password, or contact admin.")
	ErrIncorrectPassword  = errors.New("Incorrect password")
	ErrNoOTP              = errors.New("No OTP found. Please request a new OTP.")
	ErrInvalidOTP         = errors.New("Invalid OTP. Please check and try again.")
	ErrOTPExpired         = errors.New("OTP has expired. Please request a new OTP.")
	ErrOTPNotVerified     = errors.New("OTP verification required. Please verify OTP first.")
	ErrOTPRateLimited     = errors.New("Too many OTP requests, please try again later")
	ErrMailSend           = errors.New("Failed to send email. Please check your email configuration or try again later.")
)

// SignUpInput is the manual registration payload.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Class    string
	Subject  string
}

// GoogleInput is the Google sign-up/login payload. One endpoint serves both
// new and returning users.
type GoogleInput struct {
	Name     string
	Email    string
	Role     string
	PhotoURL string
	Class    string
	Subject  string
}

// AuthService holds the authentication and session flows. Methods returning
// a token expect the caller to place it in the session cookie.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GoogleAuth(ctx context.Context, in GoogleInput) (*models.User, string, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, password string) error
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}
