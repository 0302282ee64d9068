package utils

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoPassword is returned when verifying against a blank digest, so callers
// can tell "no password set" apart from "wrong password".
var ErrNoPassword = errors.New("no password set")

// HashPassword derives a bcrypt digest at the given cost. A cost of 0 falls
// back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword compares a plaintext password against a stored digest.
func CheckPassword(digest, plain string) error {
	if strings.TrimSpace(digest) == "" {
		return ErrNoPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
}
