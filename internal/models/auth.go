package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// RegisterRequest creates a new account in the directory.
type RegisterRequest struct {
	Name            string   `json:"name" validate:"required,notblank"`
	Surname         string   `json:"surname" validate:"required,notblank"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=6"`
	ConfirmPassword string   `json:"confirm_password" validate:"required"`
	Role            UserRole `json:"role" validate:"required,role"`
	Faculty         string   `json:"faculty" validate:"required_if=Role student"`
	Group           string   `json:"group" validate:"required_if=Role student"`
}

// UpdateProfileRequest patches profile fields; nil fields are left untouched.
type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,notblank"`
	Surname *string `json:"surname" validate:"omitempty,notblank"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Faculty *string `json:"faculty"`
	Group   *string `json:"group"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Surname string   `json:"surname"`
	Email   string   `json:"email"`
	Role    UserRole `json:"role"`
	Faculty string   `json:"faculty,omitempty"`
	Group   string   `json:"group,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID  string   `json:"user_id"`
	Role    UserRole `json:"role"`
	Email   string   `json:"email"`
	Faculty string   `json:"faculty,omitempty"`
	Group   string   `json:"group,omitempty"`
	jwt.RegisteredClaims
}

// Targeting returns the audience triple carried by the token.
func (c *JWTClaims) Targeting() Audience {
	return Audience{Role: c.Role, Faculty: c.Faculty, Group: c.Group}
}
