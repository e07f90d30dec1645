package domain

import (
	"net/mail"
	"strings"
	"time"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// User represents an identity known to the identity provider.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthMode distinguishes the two authenticating flows.
type AuthMode string

const (
	ModeSignIn AuthMode = "sign-in"
	ModeSignUp AuthMode = "sign-up"
)

// Credentials is the email/password pair submitted on the sign-in and sign-up views.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the email. Passwords are taken as typed.
func (c Credentials) Normalize() Credentials {
	c.Email = strings.TrimSpace(c.Email)
	return c
}

// Validate checks the credentials before any provider call is issued.
func (c Credentials) Validate(mode AuthMode) error {
	c = c.Normalize()
	if c.Email == "" {
		return NewError(ErrCodeValidation, "Email is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return NewError(ErrCodeValidation, "Email address is invalid")
	}
	if c.Password == "" {
		return NewError(ErrCodeValidation, "Password is required")
	}
	if mode == ModeSignUp && len(c.Password) < MinPasswordLength {
		return NewError(ErrCodeValidation, "Password must be at least 6 characters")
	}
	return nil
}
