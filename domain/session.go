package domain

import "time"

// Session represents one authenticated login issued by the identity provider.
// The core observes it per check and never keeps it past the view that asked for it.
type Session struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Valid reports whether the session is present.
func (s *Session) Valid() bool {
	return s != nil && s.UserID != "" && s.AccessToken != ""
}

// Label is the user-facing identity shown on the dashboard.
func (s *Session) Label() string {
	if s == nil {
		return ""
	}
	return s.Email
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
