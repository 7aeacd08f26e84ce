// file: service/retry.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/repository"
	"time"
)

const retryBaseDelay = 100 * time.Millisecond

// withRetry runs fn up to attempts times with a linear backoff between tries.
// Business rejections (no rows, duplicate email) are returned immediately;
// only transient store failures are retried, and once the attempts are spent
// the last error is wrapped as ErrStoreUnavailable.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !isRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrStoreUnavailable, ctx.Err())
		case <-time.After(time.Duration(i+1) * retryBaseDelay):
		}
	}
	return fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
}

func isRetryable(err error) bool {
	return !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, repository.ErrDuplicateEmail)
}
