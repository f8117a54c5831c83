package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/config"
)

// hmacVerifier is an implementation of CredentialVerifier for HMAC-SHA
// signed tokens.
type hmacVerifier struct {
	signingKey []byte
	logger     *slog.Logger
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration    // Allowed time difference to handle clock drift
}

// tokenClaims defines the structure of the JWT claims we accept
type tokenClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// Ensure hmacVerifier implements CredentialVerifier interface
var _ CredentialVerifier = (*hmacVerifier)(nil)

// NewJWTVerifier creates a CredentialVerifier for HMAC-SHA256 signed tokens.
func NewJWTVerifier(cfg config.AuthConfig, logger *slog.Logger) (CredentialVerifier, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacVerifier{
		signingKey: []byte(cfg.JWTSecret),
		logger:     logger,
		timeFunc:   time.Now,
		clockSkew:  2 * time.Minute,
	}, nil
}

// Verify validates a signed token and returns the user ID from its claims.
func (v *hmacVerifier) Verify(ctx context.Context, tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, ErrMissingToken
	}

	now := v.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			v.logger.DebugContext(ctx, "token validation failed: token expired", "error", err)
			return uuid.Nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			v.logger.DebugContext(ctx, "token validation failed: token not yet valid", "error", err)
			return uuid.Nil, ErrTokenNotYetValid
		default:
			v.logger.DebugContext(ctx, "token validation failed", "error", err)
			return uuid.Nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID := claims.UserID
	if userID == uuid.Nil {
		// Fall back to the subject claim for tokens without a uid field
		parsed, err := uuid.Parse(claims.Subject)
		if err != nil {
			v.logger.DebugContext(ctx, "token carries no usable user ID", "subject", claims.Subject)
			return uuid.Nil, ErrInvalidToken
		}
		userID = parsed
	}

	return userID, nil
}
