package plumbing

import (
	"errors"
	"fmt"
)

// The error kinds from spec.md §7, as distinct sentinels so callers can
// use errors.Is/errors.As instead of matching on a generic code field.
var (
	// ErrNotFound: object, ref, or reflog entry absent. Recoverable.
	ErrNotFound = errors.New("not found")
	// ErrInvalidType is returned when a header or argument names an
	// object type outside {commit, tree, blob, tag}.
	ErrInvalidType = errors.New("invalid object type")
	// ErrNotSupported marks a version or backend corevcs cannot honour;
	// callers fall back.
	ErrNotSupported = errors.New("not supported")
)

// Corrupt reports a fatal, never-silently-repaired structural problem:
// a bad header, a decompression failure, a broken delta chain, an
// identity mismatch on verify, or a tree ordering violation.
type Corrupt struct {
	Component string // e.g. "object-store", "pack-index", "bitmap"
	Reason    string
	Err       error
}

func (e *Corrupt) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: corrupt: %s: %v", e.Component, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: corrupt: %s", e.Component, e.Reason)
}

func (e *Corrupt) Unwrap() error { return e.Err }

// NewCorrupt builds a Corrupt error, optionally wrapping a lower-level
// cause.
func NewCorrupt(component, reason string, cause error) *Corrupt {
	return &Corrupt{Component: component, Reason: reason, Err: cause}
}

// InvalidArgument marks a caller bug or rejected user input: a malformed
// ref name, an out-of-range line range, bad hex.
type InvalidArgument struct {
	What   string
	Reason string
}

func (e *InvalidArgument) Error() string {
	return fmt.Sprintf("invalid argument: %s: %s", e.What, e.Reason)
}

func NewInvalidArgument(what, reason string) *InvalidArgument {
	return &InvalidArgument{What: what, Reason: reason}
}

// PermanentError represents an unrecoverable error, preserved from the
// teacher for callers that distinguish permanent failures from transient
// retry-worthy ones.
type PermanentError struct {
	Err error
}

func NewPermanentError(err error) *PermanentError {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent error: %s", e.Err.Error())
}

func (e *PermanentError) Unwrap() error { return e.Err }
