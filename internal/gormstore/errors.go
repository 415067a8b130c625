package gormstore

import (
	"strings"

	"github.com/kernelapp/kernel/internal/store"
)

// isUniqueViolation recognizes the duplicate-key errors returned by the
// three supported dialects. gorm does not normalize driver errors, so this
// matches on the message text the same way the teacher's adapters guard
// against double-submits from concurrent plugin registrations.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "duplicate entry"),
		strings.Contains(msg, "unique_violation"):
		return true
	}
	return false
}

// wrapTransient marks errors that look like connection or lock-contention
// failures as retryable; anything else (bad SQL, constraint violations
// other than uniqueness) is returned unchanged so the retry decorator does
// not waste attempts on errors that will never resolve on their own.
func wrapTransient(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "lock wait"),
		strings.Contains(msg, "too many connections"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "eof"):
		return store.Transient(err)
	}
	return err
}
