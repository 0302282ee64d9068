package repository

import (
	"context"
	"errors"

	"github.com/HimanshuSagar02/RCR-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the credential store. Consistency of per-user fields
// (OTP state, password, status) relies on the store's per-document atomicity;
// there is no locking layer above it.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Count(ctx context.Context) (int64, error)
	Sample(ctx context.Context, limit int64) ([]models.User, error)
}
