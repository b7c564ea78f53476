package retry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/loykin/restclient/internal/common"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Config holds configuration for history store retries.
// The outbound plugin request is never retried; only database work is.
type Config struct {
	MaxRetries      int           // Maximum number of retry attempts
	InitialDelay    time.Duration // Initial delay before first retry
	MaxDelay        time.Duration // Maximum delay between retries
	BackoffFactor   float64       // Multiplier for exponential backoff
	RetryableErrors []string      // Error substrings that trigger retries
}

// DefaultRetryConfig returns the default store retry configuration.
func DefaultRetryConfig() *Config {
	return &Config{
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: []string{
			"connection refused",
			"connection reset",
			"timeout",
			"temporary failure",
			"deadlock",
			"database is locked",
			"broken pipe",
		},
	}
}

// IsRetryable reports whether err is a transient database failure.
func (rc *Config) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, sql.ErrTxDone) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return true
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return true
		default:
			return false
		}
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		default:
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, s := range rc.RetryableErrors {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// delay returns the backoff before retry number attempt (0-based).
func (rc *Config) delay(attempt int) time.Duration {
	if attempt <= 0 {
		return rc.InitialDelay
	}
	d := time.Duration(float64(rc.InitialDelay) * math.Pow(rc.BackoffFactor, float64(attempt)))
	if d > rc.MaxDelay {
		d = rc.MaxDelay
	}
	return d
}

// Do runs op until it succeeds, fails with a non-retryable error,
// exhausts cfg.MaxRetries, or ctx is done.
func Do[T any](ctx context.Context, cfg *Config, op func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	logger := common.GetLogger().WithComponent("store-retry")

	var zero T
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		v, err := op()
		if err == nil {
			if attempt > 0 {
				logger.Info("database operation succeeded after retry", "attempt", attempt+1)
			}
			return v, nil
		}
		lastErr = err

		if !cfg.IsRetryable(err) {
			logger.Debug("database operation failed with non-retryable error", "error", err, "attempt", attempt+1)
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := cfg.delay(attempt)
		logger.Warn("database operation failed, retrying",
			"error", err,
			"attempt", attempt+1,
			"max_attempts", cfg.MaxRetries+1,
			"retry_delay", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, fmt.Errorf("operation cancelled during retry: %w", ctx.Err())
		case <-t.C:
		}
	}

	logger.Error("database operation failed after all retry attempts", "error", lastErr, "attempts", cfg.MaxRetries+1)
	return zero, fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// Exec runs a database statement under the retry policy.
func Exec(ctx context.Context, cfg *Config, exec func() (sql.Result, error)) (sql.Result, error) {
	return Do(ctx, cfg, exec)
}

// Query runs a database query under the retry policy.
func Query(ctx context.Context, cfg *Config, query func() (*sql.Rows, error)) (*sql.Rows, error) {
	return Do(ctx, cfg, query)
}
