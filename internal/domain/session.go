package domain

import "time"

// UserSession is the server-side state of a signed-in browser.
// The cookie only carries ID; the bearer token never leaves the server.
type UserSession struct {
	ID        string    `json:"id" db:"id"`
	Token     string    `json:"-" db:"token"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject,omitempty" db:"subject"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *UserSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `schema:"email" form:"email" json:"email" validate:"required,email"`
	Password string `schema:"password" form:"password" json:"password" validate:"required"`
}

// LoginResult is what the remote API answers to a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}
