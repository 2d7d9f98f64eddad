// Package errors wraps github.com/pkg/errors with a notion of "fatal"
// construction-time errors, mirroring restic's internal/errors package: most
// of this repository's logic is total, so the only errors that exist are
// raised once, at construction time, when a caller supplies a malformed
// parameter (e.g. a modulo polynomial of degree below 8).
package errors

import "github.com/pkg/errors"

// New, Wrap and Wrapf re-export github.com/pkg/errors so callers importing
// this package don't need a second errors import.
var (
	New   = errors.New
	Wrap  = errors.Wrap
	Wrapf = errors.Wrapf
)

// fatalError marks an error as non-retryable: the caller passed a parameter
// that can never succeed, as opposed to a transient byte-source failure.
type fatalError struct {
	s string
}

func (e *fatalError) Error() string {
	return e.s
}

// Fatal returns an error marked fatal via IsFatal.
func Fatal(s string) error {
	return &fatalError{s: s}
}

// Fatalf is like Fatal but with fmt.Sprintf-style formatting.
func Fatalf(format string, args ...interface{}) error {
	return &fatalError{s: errors.Errorf(format, args...).Error()}
}

// IsFatal returns whether err was created with Fatal or Fatalf.
func IsFatal(err error) bool {
	_, ok := err.(*fatalError)
	return ok
}
