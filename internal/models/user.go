package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID              int        `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // Never expose in JSON
	Username        *string    `json:"username,omitempty"`
	Role            Role       `json:"role"`
	TrackingEnabled bool       `json:"tracking_enabled"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin checks if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest is the request body for user registration
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Username *string `json:"username,omitempty"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// TrackingStatus is the account-level switch for competitor features
type TrackingStatus struct {
	Enabled bool `json:"enabled"`
}
