// Package shared holds cross-cutting helpers: the error taxonomy, audit
// logging, actor propagation and pagination.
package shared

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so callers receive a stable machine-readable
// discriminator alongside the message.
type Kind string

const (
	// KindValidation marks malformed input: bad discount value, non-positive
	// quantity, out-of-range percent.
	KindValidation Kind = "VALIDATION"
	// KindNotFound marks an absent quotation, discount, version or catalog row.
	KindNotFound Kind = "NOT_FOUND"
	// KindInvalidState marks an illegal status or discount-resolution transition.
	KindInvalidState Kind = "INVALID_STATE"
	// KindMissingPrice marks a catalog miss with no manual unit price supplied.
	KindMissingPrice Kind = "MISSING_PRICE"
	// KindConflict marks a failed transactional precondition (lost update,
	// serialization failure, duplicate convert).
	KindConflict Kind = "CONFLICT"
	// KindUnauthorized surfaces failures from the external auth collaborator
	// opaquely.
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindInternal covers everything else; details stay out of responses.
	KindInternal Kind = "INTERNAL"
)

// Error is the structured error every engine operation returns. Context
// carries the identifying tuple (quotation id, attempted action, missing
// price key, ...) for the caller and the audit trail.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// With attaches a context value and returns the error for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any, 4)
	}
	e.Context[key] = value
	return e
}

// E builds a structured error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a structured error around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the Kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// ContextOf extracts the structured context from err, if any.
func ContextOf(err error) map[string]any {
	var se *Error
	if errors.As(err, &se) {
		return se.Context
	}
	return nil
}
