// Package auth verifies bearer credentials presented by API clients. The
// application never issues tokens itself; it only checks tokens minted by
// the identity provider that shares the signing secret.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// CredentialVerifier defines the interface for checking a bearer token and
// resolving the user it belongs to.
type CredentialVerifier interface {
	// Verify validates the token string and returns the ID of the user it
	// was issued for. Returns ErrMissingToken, ErrInvalidToken,
	// ErrExpiredToken or ErrTokenNotYetValid on failure.
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)
