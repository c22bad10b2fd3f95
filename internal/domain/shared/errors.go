// Package shared holds the error kinds and event plumbing every domain
// package builds on. It imports only the standard library.
package shared

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; concrete errors are DomainErrors
// that carry one of these as Kind.
var (
	ErrNotFound = errors.New("entity not found")

	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidState: the operation is valid but not for the entity as it is now.
	ErrInvalidState = errors.New("invalid state")
)

// DomainError locates a failure: which domain, which operation, what kind.
type DomainError struct {
	Domain  string // "staff", "roster", "query"
	Op      string // "FromString", "SetFullname", ...
	Kind    error
	Message string
	Err     error // cause, optional
}

func (e *DomainError) Error() string {
	msg := e.Domain + "." + e.Op + ": " + e.Message
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the cause, or the kind when there is none.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches a kind, anything in the cause chain, or another DomainError
// with the same location and message. The last rule lets a copy made by
// With still match its sentinel.
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Domain == t.Domain && e.Op == t.Op && e.Kind == t.Kind && e.Message == t.Message
	}
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError creates a sentinel-style domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError creates a domain error around a cause.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// With returns a copy of e caused by err.
func (e *DomainError) With(err error) *DomainError {
	clone := *e
	clone.Err = err
	return &clone
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsFormat(err error) bool   { return errors.Is(err, ErrInvalidFormat) }
func IsState(err error) bool    { return errors.Is(err, ErrInvalidState) }

// IsValidation reports input, format and range errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrValueOutOfRange)
}
