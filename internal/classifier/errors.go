package classifier

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned when prediction is requested from a model
// that has not been trained or loaded.
var ErrModelUnavailable = errors.New("classifier model unavailable: not trained or loaded")

// InputError represents malformed training input (missing columns, mismatched lengths)
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("input error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("input error: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// InsufficientDataError represents a corpus too small to split or vectorize
type InsufficientDataError struct {
	Message string
	Class   string // Offending class, if any
	Count   int    // Members of Class
}

func (e *InsufficientDataError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("insufficient data: %s (class %q has %d members)", e.Message, e.Class, e.Count)
	}
	return fmt.Sprintf("insufficient data: %s", e.Message)
}

// PersistenceError represents an I/O failure while writing a model bundle
type PersistenceError struct {
	Path    string
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persistence error at %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("persistence error at %s: %s", e.Path, e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NotFoundError indicates that no model bundle exists at a location
type NotFoundError struct {
	Path  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model not found at %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// CorruptError indicates a model bundle exists but cannot be used: an artifact
// is unreadable, fails its checksum, or belongs to a different bundle.
type CorruptError struct {
	Path    string
	Message string
	Cause   error
}

func (e *CorruptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt model artifact %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("corrupt model artifact %s: %s", e.Path, e.Message)
}

func (e *CorruptError) Unwrap() error {
	return e.Cause
}
