// Package errs defines the sentinel error kinds surfaced by the indexing
// core, grounded in the corpus convention of sentinel errors wrapped with
// github.com/pkg/errors for stack traces and cause chains.
package errs

import "github.com/pkg/errors"

// Sentinel error kinds. Use errors.Is against these to classify a failure;
// use errors.Wrap/errors.Wrapf when returning one so the cause chain and a
// stack trace survive.
var (
	// ErrCapacityExceeded is returned when a packed Location field (file
	// id, line or column) or the FileIdTable itself would overflow its
	// fixed bit width.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvariantViolated indicates a bug: an empty USR arrived for a
	// Func or Var record, or a LocalId escaped the vector it should
	// index into. It always aborts the current parse.
	ErrInvariantViolated = errors.New("invariant violated")

	// ErrFrontendFailed is returned when the external C/C++ frontend
	// could not produce any events at all (e.g. missing file, frontend
	// initialization error).
	ErrFrontendFailed = errors.New("frontend failed")

	// ErrCancelled is returned when cooperative cancellation was
	// observed between top-level frontend events.
	ErrCancelled = errors.New("parse cancelled")

	// ErrMalformedLocation is returned by location.Parse when a textual
	// Location does not round-trip.
	ErrMalformedLocation = errors.New("malformed location")
)

// IsFatal reports whether err should abort the current parse outright
// (capacity, invariant, frontend-failure and cancellation errors), as
// opposed to being silently absorbed
// so that one bad translation unit does not poison the rest.
func IsFatal(err error) bool {
	return errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrInvariantViolated) ||
		errors.Is(err, ErrFrontendFailed) ||
		errors.Is(err, ErrCancelled)
}
