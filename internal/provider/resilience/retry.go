package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// LinearBackOff waits Step after the first failure, 2*Step after the second,
// and so on. Used for providers whose published etiquette asks for spaced-out
// retries rather than tight exponential ones.
type LinearBackOff struct {
	// Step is the base delay added per attempt.
	Step time.Duration

	attempt int
}

// NextBackOff returns the wait before the next attempt.
func (b *LinearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.Step
}

// Reset restarts the progression.
func (b *LinearBackOff) Reset() {
	b.attempt = 0
}

var _ backoff.BackOff = (*LinearBackOff)(nil)

// RetryConfig parameterizes Retry.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries uint64

	// BackOff supplies the delay between attempts. If nil, an exponential
	// backoff with library defaults is used.
	BackOff backoff.BackOff
}

// Retry runs op up to MaxRetries+1 times, sleeping per the configured backoff
// between attempts. There is no sleep after the final failed attempt. Wrap an
// error with Permanent to stop retrying immediately. The context cancels both
// the waits and further attempts.
func Retry(ctx context.Context, cfg RetryConfig, op func() error) error {
	bo := cfg.BackOff
	if bo == nil {
		bo = backoff.NewExponentialBackOff()
	}
	wrapped := backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx)
	return backoff.Retry(op, wrapped)
}

// Permanent marks err as non-retryable for Retry.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
