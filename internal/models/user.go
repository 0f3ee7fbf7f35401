package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse wraps the backend reply. The backend signals failure with a
// falsy "status"; everything else is passed through untouched.
type LoginResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// SessionClaims identify an anonymous storefront session. The cart and the
// checkout wizard are scoped to SessionID.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
