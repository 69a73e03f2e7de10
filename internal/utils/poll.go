package utils

import (
	"context"
	"errors"
	"time"
)

// ErrPollExhausted is returned when the attempt ceiling is reached before the
// predicate reports done.
var ErrPollExhausted = errors.New("poll attempts exhausted")

// Poll invokes fn on a fixed interval until it reports done, returns an
// error, the attempt ceiling is reached, or ctx is cancelled. The first
// attempt runs immediately.
func Poll(ctx context.Context, interval time.Duration, maxAttempts int, fn func(ctx context.Context) (done bool, err error)) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return ErrPollExhausted
}
