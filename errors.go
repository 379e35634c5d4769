package itemset

import (
	"errors"
	"fmt"
)

// ErrNoSourceDir is returned when a rebuild is requested without a source
// directory to load from.
var ErrNoSourceDir = errors.New("itemset: rebuild requested without a source directory")

// ErrIndexOutOfRange indicates a read outside [0, Len).
//
// It is also returned when the cached row count claims an index is valid but
// the underlying row does not exist (stale metadata after an out-of-band
// mutation of the store).
type ErrIndexOutOfRange struct {
	Index  int
	Length int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("itemset: index %d out of range [0, %d)", e.Index, e.Length)
}

// ErrColumnNotFound indicates that a source file does not contain the
// configured column.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrColumnNotFound struct {
	File   string
	Column string
	cause  error
}

func (e *ErrColumnNotFound) Error() string {
	return fmt.Sprintf("itemset: column %q not found in %s", e.Column, e.File)
}

func (e *ErrColumnNotFound) Unwrap() error { return e.cause }
