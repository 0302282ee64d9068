package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsEmail reports whether s looks like a valid email address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// NormalizeEmail lowercases and trims an email so lookups and stored records
// agree on one canonical form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
