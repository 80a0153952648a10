package middleware

import (
	"fmt"
	"strings"

	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/logger"
	"quiz-sitting/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
	ClaimsKey           = "claims"
)

// authError is a rejected credential; Protected sends it, OptionalAuth ignores it.
type authError struct {
	status  int
	code    string
	message string
}

func (e *authError) send(c *fiber.Ctx) error {
	return c.Status(e.status).JSON(ErrorResponse{Code: e.code, Message: e.message, Status: e.status})
}

// authenticate reads the bearer token and verifies it as an access token.
func authenticate(c *fiber.Ctx, verifier service.TokenVerifier) (*dto.AuthClaims, *authError) {
	header := c.Get(AuthorizationHeader)
	if header == "" {
		return nil, &authError{fiber.StatusUnauthorized, "MISSING_AUTH_HEADER", "Authorization header is missing"}
	}
	if !strings.HasPrefix(header, BearerSchema) {
		return nil, &authError{fiber.StatusUnauthorized, "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerSchema))
	if token == "" {
		return nil, &authError{fiber.StatusUnauthorized, "EMPTY_TOKEN", "Token is empty"}
	}

	claims, err := verifier.ValidateJWT(c.Context(), token)
	if err != nil {
		return nil, &authError{fiber.StatusUnauthorized, "INVALID_TOKEN", err.Error()}
	}
	if claims.TokenType != dto.AccessTokenType {
		return nil, &authError{
			fiber.StatusForbidden,
			"INVALID_TOKEN_TYPE",
			fmt.Sprintf("Invalid token type: expected %s, got %s", dto.AccessTokenType, claims.TokenType),
		}
	}
	return claims, nil
}

func storeClaims(c *fiber.Ctx, claims *dto.AuthClaims) {
	c.Locals(UserIDKey, claims.UserID)
	c.Locals(ClaimsKey, claims)
}

// Protected rejects the request unless it carries a valid access token.
func Protected(verifier service.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, authErr := authenticate(c, verifier)
		if authErr != nil {
			return authErr.send(c)
		}
		storeClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the user when a valid access token is present and
// otherwise lets the request through as anonymous.
func OptionalAuth(verifier service.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(AuthorizationHeader) == "" {
			return c.Next()
		}
		claims, authErr := authenticate(c, verifier)
		if authErr != nil {
			logger.Get().Debug("Proceeding as anonymous", zap.String("reason", authErr.code))
			return c.Next()
		}
		storeClaims(c, claims)
		return c.Next()
	}
}

// RequirePermission lets the request through only when the claims stored by
// Protected carry permission. It must run after Protected.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(ClaimsKey).(*dto.AuthClaims)
		if !ok || claims == nil {
			return (&authError{fiber.StatusUnauthorized, "MISSING_AUTH", "Authentication is required"}).send(c)
		}
		if !claims.HasPermission(permission) {
			logger.Get().Info("Permission denied",
				zap.String("userID", claims.UserID),
				zap.String("permission", permission),
				zap.String("path", c.Path()))
			return (&authError{fiber.StatusForbidden, "PERMISSION_DENIED", fmt.Sprintf("the %s permission is required", permission)}).send(c)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDKey).(string)
	return userID
}

// HasPermission reports whether the request was authenticated with claims
// carrying permission.
func HasPermission(c *fiber.Ctx, permission string) bool {
	claims, ok := c.Locals(ClaimsKey).(*dto.AuthClaims)
	return ok && claims != nil && claims.HasPermission(permission)
}
