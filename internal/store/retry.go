package store

import (
	"context"
	"math"
	"time"

	"github.com/kernelapp/kernel/internal/domain"
)

// RetryConfig controls the bounded exponential backoff applied to every
// adapter call. Defaults mirror KERNEL_LIB_MAX_RETRIES /
// KERNEL_LIB_BACKOFF_FACTOR.
type RetryConfig struct {
	MaxRetries    int
	BackoffFactor float64
}

// DefaultRetryConfig returns the spec's documented defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 4, BackoffFactor: 1.2}
}

func (c RetryConfig) delay(attempt int) time.Duration {
	seconds := c.BackoffFactor * math.Pow(2, float64(attempt-1))
	return time.Duration(seconds * float64(time.Second))
}

// withRetry runs fn up to cfg.MaxRetries+1 times. Only errors wrapped with
// Transient are retried; any other error returns immediately. Once the
// retry budget is exhausted, the last error is wrapped in
// ErrRetryableExhausted.
func withRetry(ctx context.Context, cfg RetryConfig, sleep func(context.Context, time.Duration) bool, fn func() error) error {
	var lastErr error
	attempts := cfg.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if !sleep(ctx, cfg.delay(attempt)) {
			return ctx.Err()
		}
	}
	return &retryExhaustedError{cause: lastErr}
}

type retryExhaustedError struct{ cause error }

func (e *retryExhaustedError) Error() string {
	return ErrRetryableExhausted.Error() + ": " + e.cause.Error()
}
func (e *retryExhaustedError) Unwrap() []error { return []error{ErrRetryableExhausted, e.cause} }

// defaultSleep blocks for d or until ctx is cancelled, returning false in
// the latter case.
func defaultSleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// RetryingDataStore wraps a DataStore with the bounded exponential backoff
// policy described above.
type RetryingDataStore[M any] struct {
	inner DataStore[M]
	cfg   RetryConfig
	sleep func(context.Context, time.Duration) bool
}

// NewRetryingDataStore wraps inner with cfg's retry policy.
func NewRetryingDataStore[M any](inner DataStore[M], cfg RetryConfig) *RetryingDataStore[M] {
	return &RetryingDataStore[M]{inner: inner, cfg: cfg, sleep: defaultSleep}
}

func (r *RetryingDataStore[M]) Add(ctx context.Context, id string, manifest M) error {
	return withRetry(ctx, r.cfg, r.sleep, func() error { return r.inner.Add(ctx, id, manifest) })
}

func (r *RetryingDataStore[M]) Update(ctx context.Context, id string, manifest M) error {
	return withRetry(ctx, r.cfg, r.sleep, func() error { return r.inner.Update(ctx, id, manifest) })
}

func (r *RetryingDataStore[M]) Fetch(ctx context.Context, id string) (M, error) {
	var result M
	err := withRetry(ctx, r.cfg, r.sleep, func() error {
		var innerErr error
		result, innerErr = r.inner.Fetch(ctx, id)
		return innerErr
	})
	return result, err
}

func (r *RetryingDataStore[M]) Delete(ctx context.Context, id string) error {
	return withRetry(ctx, r.cfg, r.sleep, func() error { return r.inner.Delete(ctx, id) })
}

// RetryingChangesDataStore wraps a ChangesDataStore with the same policy.
type RetryingChangesDataStore struct {
	inner ChangesDataStore
	cfg   RetryConfig
	sleep func(context.Context, time.Duration) bool
}

// NewRetryingChangesDataStore wraps inner with cfg's retry policy.
func NewRetryingChangesDataStore(inner ChangesDataStore, cfg RetryConfig) *RetryingChangesDataStore {
	return &RetryingChangesDataStore{inner: inner, cfg: cfg, sleep: defaultSleep}
}

func (r *RetryingChangesDataStore) Add(ctx context.Context, change domain.ChangeEvent) error {
	return withRetry(ctx, r.cfg, r.sleep, func() error { return r.inner.Add(ctx, change) })
}

func (r *RetryingChangesDataStore) Filter(ctx context.Context, since *domain.Timestamp, limit int) ([]domain.ChangeEvent, error) {
	var result []domain.ChangeEvent
	err := withRetry(ctx, r.cfg, r.sleep, func() error {
		var innerErr error
		result, innerErr = r.inner.Filter(ctx, since, limit)
		return innerErr
	})
	return result, err
}
