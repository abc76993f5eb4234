package models

import "time"

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
)

// User is a privileged site editor. Authentication is by 6-digit PIN;
// only the argon2id hash of the PIN is ever stored.
type User struct {
	ID        string
	Name      string
	PINHash   string
	Role      UserRole
	CreatedAt time.Time
	LastLogin *time.Time
}

// Session grants a browser continued access until ExpiresAt. Expiry is
// absolute from creation; sessions never auto-renew.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// LoginAttempt is the per-source-address failure counter backing the
// login rate limiter. One row per address.
type LoginAttempt struct {
	IPAddress      string
	Attempts       int
	FirstAttemptAt time.Time
	LockedUntil    *time.Time
}

// CSRFToken is an anti-forgery token bound to a session. Its 24h expiry
// is independent of the parent session's.
type CSRFToken struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}
