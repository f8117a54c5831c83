package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingVerifier counts calls and returns a fixed outcome.
type countingVerifier struct {
	userID uuid.UUID
	err    error
	calls  int
}

func (c *countingVerifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	c.calls++
	if c.err != nil {
		return uuid.Nil, c.err
	}
	return c.userID, nil
}

func TestCachedVerifier_CachesSuccess(t *testing.T) {
	t.Parallel()

	inner := &countingVerifier{userID: uuid.New()}
	v := NewCachedVerifier(inner, time.Minute, 16)

	for i := 0; i < 3; i++ {
		got, err := v.Verify(context.Background(), "token-a")
		require.NoError(t, err)
		assert.Equal(t, inner.userID, got)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCachedVerifier_DistinctTokens(t *testing.T) {
	t.Parallel()

	inner := &countingVerifier{userID: uuid.New()}
	v := NewCachedVerifier(inner, time.Minute, 16)

	_, err := v.Verify(context.Background(), "token-a")
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), "token-b")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedVerifier_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	inner := &countingVerifier{err: ErrInvalidToken}
	v := NewCachedVerifier(inner, time.Minute, 16)

	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), "bad-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestCachedVerifier_EmptyToken(t *testing.T) {
	t.Parallel()

	inner := &countingVerifier{userID: uuid.New()}
	v := NewCachedVerifier(inner, time.Minute, 16)

	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Zero(t, inner.calls)
}

func TestCachedVerifier_Invalidate(t *testing.T) {
	t.Parallel()

	inner := &countingVerifier{userID: uuid.New()}
	v := NewCachedVerifier(inner, time.Minute, 16)

	_, err := v.Verify(context.Background(), "token-a")
	require.NoError(t, err)

	v.Invalidate()

	_, err = v.Verify(context.Background(), "token-a")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
