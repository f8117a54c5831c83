package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttime/smarttime-api/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var verifierNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestVerifier(t *testing.T) *hmacVerifier {
	t.Helper()
	v, err := NewJWTVerifier(
		config.AuthConfig{JWTSecret: testSecret, VerificationCacheTTLSeconds: 300},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	require.NoError(t, err)

	impl := v.(*hmacVerifier)
	impl.timeFunc = func() time.Time { return verifierNow }
	return impl
}

// mintToken signs an HS256 token with the given claims and secret.
func mintToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID uuid.UUID) tokenClaims {
	return tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(verifierNow),
			ExpiresAt: jwt.NewNumericDate(verifierNow.Add(time.Hour)),
		},
	}
}

func TestNewJWTVerifier_ShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTVerifier(
		config.AuthConfig{JWTSecret: "short"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	assert.Error(t, err)
}

func TestVerify_ValidToken(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	userID := uuid.New()
	token := mintToken(t, testSecret, validClaims(userID))

	got, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerify_SubjectFallback(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	userID := uuid.New()

	// Identity providers that do not emit a uid claim still carry the user
	// in the subject.
	token := mintToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(verifierNow),
		ExpiresAt: jwt.NewNumericDate(verifierNow.Add(time.Hour)),
	})

	got, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerify_MissingToken(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestVerify_ExpiredToken(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	claims := validClaims(uuid.New())
	claims.ExpiresAt = jwt.NewNumericDate(verifierNow.Add(-time.Hour))
	token := mintToken(t, testSecret, claims)

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_NotYetValid(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	claims := validClaims(uuid.New())
	claims.NotBefore = jwt.NewNumericDate(verifierNow.Add(time.Hour))
	token := mintToken(t, testSecret, claims)

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	token := mintToken(t, "ffffffffffffffffffffffffffffffff", validClaims(uuid.New()))

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	_, err := v.Verify(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_NoUsableUserID(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	token := mintToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		IssuedAt:  jwt.NewNumericDate(verifierNow),
		ExpiresAt: jwt.NewNumericDate(verifierNow.Add(time.Hour)),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ClockSkewTolerated(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	claims := validClaims(uuid.New())
	// Expired one minute ago, inside the two-minute skew allowance.
	claims.ExpiresAt = jwt.NewNumericDate(verifierNow.Add(-time.Minute))
	token := mintToken(t, testSecret, claims)

	_, err := v.Verify(context.Background(), token)
	assert.NoError(t, err)
}
