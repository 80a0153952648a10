package dto

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

const AccessTokenType = "access"

// AuthClaims defines the custom claims carried by bearer tokens.
type AuthClaims struct {
	UserID      string   `json:"user_id"`
	TokenType   string   `json:"token_type"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the token grants permission.
func (c *AuthClaims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}
