package service

import (
	"context"
	"errors"
	"fmt"

	"quiz-sitting/internal/dto"
	"quiz-sitting/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrInvalidJWTToken = errors.New("invalid JWT token")

// TokenVerifier checks bearer tokens issued by the identity provider.
type TokenVerifier interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type tokenVerifier struct {
	secret []byte
}

// NewTokenVerifier verifies HMAC-signed tokens with secret.
func NewTokenVerifier(secret string) (TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret key is not configured")
	}
	return &tokenVerifier{secret: []byte(secret)}, nil
}

func (v *tokenVerifier) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Warn("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}
