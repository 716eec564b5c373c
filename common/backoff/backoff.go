// Package backoff contains helpers for dealing with backoffs.
package backoff

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewExponentialBackOff creates an instance of ExponentialBackOff using reasonable defaults.
func NewExponentialBackOff() *backoff.ExponentialBackOff {
	return backoff.NewExponentialBackOff(
		// Make sure that the backoff never stops by default.
		backoff.WithMaxElapsedTime(0),
	)
}

// NewBoundedConstant creates a backoff that waits interval between attempts
// and allows at most attempts invocations of the operation in total.
func NewBoundedConstant(interval time.Duration, attempts int) backoff.BackOff {
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(attempts-1))
}
