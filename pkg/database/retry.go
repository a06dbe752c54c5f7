package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTransient is returned once a serialization conflict survived every
// retry attempt. Callers may retry the whole operation later.
var ErrTransient = errors.New("transient storage conflict")

const (
	maxRetries   = 3
	retryBackoff = 100 * time.Millisecond
)

// WithRetry runs fn up to three times, backing off between attempts, as
// long as the failure is a store-level serialization conflict. Any other
// error is returned as-is on the first occurrence.
func WithRetry(ctx context.Context, fn func() error) error {
	var lastErr error

	backoff := retryBackoff
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsSerializationConflict(lastErr) {
			return lastErr
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrTransient, maxRetries, lastErr)
}

// IsSerializationConflict reports whether err looks like a conflict the
// store can resolve on retry: a serialization failure or deadlock in
// PostgreSQL, or a busy database in SQLite.
func IsSerializationConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "SQLSTATE 40001") ||
		strings.Contains(msg, "SQLSTATE 40P01") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
