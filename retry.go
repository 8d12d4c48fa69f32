package tablesync

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryMaxElapsed bounds how long withRetry keeps retrying a single
// operation, mirroring the teacher's serverRetryMaxElapsed.
const retryMaxElapsed = 30 * time.Second

func newRetryBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// isRetryableError reports whether err is a transient connection-level
// failure worth retrying, grounded on dolt/store.go's isRetryableError. It
// never matches schema/configuration errors, which must propagate
// immediately per spec §7.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, substr := range []string{
		"driver: bad connection",
		"invalid connection",
		"broken pipe",
		"connection reset",
		"connection refused",
		"lost connection",
		"gone away",
		"i/o timeout",
		"unknown database",
	} {
		if strings.Contains(errStr, substr) {
			return true
		}
	}
	return false
}

// withRetry executes op, retrying with exponential backoff while the context
// is live and the failure looks transient (spec §5's "every database call...
// may block" combined with §7's transient-data-access class). Non-retryable
// errors (including all typed ErrConfiguration/ErrIntrospection errors)
// short-circuit on the first attempt.
func withRetry(ctx context.Context, op func() error) error {
	attempts := 0
	bo := newRetryBackoff()
	err := backoff.Retry(func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		if isRetryableError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
	if attempts > 1 {
		syncMetrics.retryCount.Add(ctx, int64(attempts-1))
	}
	return err
}
