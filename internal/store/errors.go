package store

import "errors"

// ErrRetryableExhausted is surfaced once the retry decorator's attempt
// budget is exhausted without success.
var ErrRetryableExhausted = errors.New("retryable backend failure: retries exhausted")

// ErrChangeLogAppendFailed is surfaced when an entity write succeeded but
// the subsequent change-log append did not. The entity write is never
// rolled back; an operator-facing retry can re-run the append.
var ErrChangeLogAppendFailed = errors.New("change log append failed")

// TransientError marks a backend error as transient (retryable), as opposed
// to a definitive failure like a duplicate key or a not-found record. Only
// transient errors are retried by the Retrying decorator; the rest bypass
// retry and propagate immediately.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so the Retrying decorator treats it as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func isTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
