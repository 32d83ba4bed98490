package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// MaxPingAttempts bounds how long Connect waits for a database that is
// still starting.
const MaxPingAttempts = 5

// IsRetryable reports whether a ping failure may clear up on its own:
// the server is unreachable or still starting. Bad credentials and
// missing databases are not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 57P03 cannot_connect_now is sent while the server boots.
		return pgErr.Code == "57P03"
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr) || strings.Contains(err.Error(), "connection refused")
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// ping retries fn with Backoff while its error is retryable.
func ping(ctx context.Context, fn func(context.Context) error, wait func(int) time.Duration) error {
	var err error
	for attempt := range MaxPingAttempts {
		if err = fn(ctx); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == MaxPingAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait(attempt)):
		}
	}
	return err
}
