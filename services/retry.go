package services

import (
	"context"
	"errors"
	"time"
)

const readAttempts = 3

// retryRead re-runs an idempotent read while it fails with ErrStorage.
// Writes never go through here. It gives up as soon as ctx is done.
func retryRead(ctx context.Context, fn func() error) error {
	var err error
	backoff := 20 * time.Millisecond
	for attempt := 1; attempt <= readAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrStorage) {
			return err
		}
		if attempt == readAttempts || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
