package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest is the payload for both citizen and government registration.
type RegisterRequest struct {
	Name       string   `json:"name" validate:"required,min=2,max=50"`
	Email      string   `json:"email" validate:"required,email"`
	Mobile     string   `json:"mobile" validate:"required,len=10,numeric"`
	Password   string   `json:"password" validate:"required,min=6"`
	Aadhaar    string   `json:"aadhaar" validate:"omitempty,len=12,numeric"`
	Department string   `json:"department" validate:"omitempty,max=100"`
	Role       UserRole `json:"-"`
	IP         string   `json:"-"`
	UserAgent  string   `json:"-"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResult is returned by register, login and verify.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// JWTClaims represents the JWT payload for bearer tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
