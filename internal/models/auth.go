package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated identity through the request context.
type JWTClaims struct {
	UserID string   `json:"id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the domain actor used by services.
func (c *JWTClaims) Actor() Actor {
	return Actor{ID: c.UserID, Role: c.Role}
}

// LoginRequest is the email/password credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new student or counselor account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required"`
}

// VerifyOTPRequest exchanges a delivered passcode for a session token.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// UserInfo is the public projection of a user embedded in auth responses.
type UserInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// LoginResponse is returned by login, register and OTP verification.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}
