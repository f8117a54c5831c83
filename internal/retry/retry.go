// Package retry wraps sethvargo/go-retry with the backoff policy used for
// outbound calls to the language model. Only errors marked transient are
// retried; everything else fails immediately.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Config controls the retry policy.
type Config struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry; subsequent delays
	// double up to MaxBackoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration
}

// DefaultConfig returns the policy used for model calls.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
	}
}

// Transient marks err as retryable. Do retries only errors wrapped this way.
func Transient(err error) error {
	return retry.RetryableError(err)
}

// Do runs op under the configured policy, honoring ctx cancellation between
// attempts. The final attempt's error is returned unwrapped of the
// retryable marker.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	backoff := retry.NewExponential(cfg.InitialBackoff)
	if cfg.MaxBackoff > 0 {
		backoff = retry.WithCappedDuration(cfg.MaxBackoff, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(cfg.MaxAttempts-1), backoff)

	return retry.Do(ctx, backoff, op)
}
