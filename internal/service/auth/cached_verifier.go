package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/cache"
)

// CachedVerifier wraps another CredentialVerifier and remembers successful
// verifications for a short TTL, so hot clients do not pay the signature
// check on every request. Failures are never cached.
type CachedVerifier struct {
	inner CredentialVerifier
	cache *cache.Cache[uuid.UUID]
}

var _ CredentialVerifier = (*CachedVerifier)(nil)

// NewCachedVerifier wraps inner with a verification cache of the given TTL.
func NewCachedVerifier(inner CredentialVerifier, ttl time.Duration, maxEntries int) *CachedVerifier {
	return &CachedVerifier{
		inner: inner,
		cache: cache.New[uuid.UUID](ttl, cache.WithMaxEntries[uuid.UUID](maxEntries)),
	}
}

// Verify returns the cached user ID when the token was recently verified,
// otherwise delegates to the wrapped verifier.
func (v *CachedVerifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrMissingToken
	}

	key := cache.Key("auth", token)
	if userID, ok := v.cache.Get(key); ok {
		return userID, nil
	}

	userID, err := v.inner.Verify(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	v.cache.Set(key, userID)
	return userID, nil
}

// Invalidate drops all cached verifications.
func (v *CachedVerifier) Invalidate() {
	v.cache.InvalidateAll()
}
