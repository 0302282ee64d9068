package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("invalid token format")
	ErrMissingSecret  = errors.New("JWT secret is not configured")
)

// Claims carries the user identifier inside the session token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the HS256 session tokens carried in the
// "token" cookie.
type TokenManager struct {
	secret string
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: secret, ttl: ttl}
}

// Generate signs a token embedding userID with the configured expiry.
// A missing secret or empty userID is a configuration error, not a
// per-request condition.
func (m *TokenManager) Generate(userID string) (string, error) {
	if m.secret == "" {
		return "", ErrMissingSecret
	}
	if userID == "" {
		return "", errors.New("user ID is required to generate token")
	}
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// Parse verifies a token and returns the embedded user ID. Expired tokens are
// reported distinctly from malformed or badly signed ones so callers can give
// differentiated feedback.
func (m *TokenManager) Parse(tokenStr string) (string, error) {
	if m.secret == "" {
		return "", ErrMissingSecret
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", ErrMalformedToken
	}
	return claims.UserID, nil
}
