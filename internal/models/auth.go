package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Role       UserRole `json:"role"`
	Department string   `json:"department"`
}

// JWTClaims represents the JWT payload for access tokens. The registered ID claim carries the session id.
type JWTClaims struct {
	UserID     int64    `json:"user_id"`
	Username   string   `json:"username"`
	Role       UserRole `json:"role"`
	Department string   `json:"department"`
	jwt.RegisteredClaims
}

// Session is the authenticated actor passed explicitly to every service call.
// It is created on login and torn down on logout.
type Session struct {
	ID         string    `json:"session_id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Role       UserRole  `json:"role"`
	Department string    `json:"department"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// UserSession is the persisted session row.
type UserSession struct {
	ID        string     `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}

// Active reports whether the session is usable at the given instant.
func (s UserSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
