package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Admin-approval workflow states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User is the credential-store record. Email is unique and stored lowercase.
// Password holds the bcrypt digest and is never serialized to JSON; a blank
// digest means "no password set" (Google-only accounts before a first reset).
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	Role           string             `bson:"role" json:"role"`
	PhotoURL       string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Class          string             `bson:"class,omitempty" json:"class,omitempty"`
	Subject        string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Status         string             `bson:"status" json:"status"`
	CreatedByAdmin bool               `bson:"createdByAdmin" json:"createdByAdmin"`

	// OTP sub-state for the password-reset flow. The code is retained after
	// verification until the password is actually reset, so the reset handler
	// can re-check it without asking the user to re-enter the code.
	// Updates persist whole documents with $set, so these must not be
	// omitempty or a cleared OTP would leave stale values behind.
	ResetOTP      string     `bson:"resetOtp" json:"-"`
	OTPExpires    *time.Time `bson:"otpExpires" json:"-"`
	IsOtpVerified bool       `bson:"isOtpVerified" json:"-"`

	LastLoginAt *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// HasPassword reports whether the account has a usable password digest.
// Blank digests are "no password set", which is distinct from a wrong password.
func (u *User) HasPassword() bool {
	return strings.TrimSpace(u.Password) != ""
}
