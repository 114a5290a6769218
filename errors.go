package hast

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by lookups that match no report.
	ErrNotFound = errors.New("not found")

	// ErrLockUnavailable is returned when the index lock could not be
	// acquired before the request context ended.
	ErrLockUnavailable = errors.New("index lock unavailable")
)

// PersistError reports a report that was indexed in memory but could not be
// written to the backing store. The in-memory insert is not rolled back.
//
// The original underlying error can be accessed via errors.Unwrap.
type PersistError struct {
	ReportID string
	Name     string
	cause    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist report %q as %s: %v", e.ReportID, e.Name, e.cause)
}

func (e *PersistError) Unwrap() error { return e.cause }

// RecoveryError describes a persisted file that recovery skipped.
//
// The original underlying error can be accessed via errors.Unwrap.
type RecoveryError struct {
	Name  string
	cause error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("recover %s: %v", e.Name, e.cause)
}

func (e *RecoveryError) Unwrap() error { return e.cause }
