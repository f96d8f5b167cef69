package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers. Kinds are stable; messages are for
// humans and never carry storage internals.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound marks a missing quiz, user, or attempt.
	KindNotFound
	// KindValidation marks a malformed quiz payload or request.
	KindValidation
	// KindUnauthorized marks a caller lacking the required role.
	KindUnauthorized
	// KindUpstream marks a failure of the backing store.
	KindUpstream
)

// Error is the error type surfaced by the core: a stable kind plus a
// human-readable message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Is makes sentinel comparisons work through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

var (
	// ErrQuizNotFound is returned when a quiz id does not resolve.
	ErrQuizNotFound = &Error{Kind: KindNotFound, Message: "quiz not found"}
	// ErrUserNotFound is returned when a user id or email does not resolve.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "user not found"}
	// ErrAttemptNotFound is returned when an attempt id does not resolve on a user.
	ErrAttemptNotFound = &Error{Kind: KindNotFound, Message: "submission not found"}
	// ErrForbidden is returned when a non-admin calls an admin-only operation.
	ErrForbidden = &Error{Kind: KindUnauthorized, Message: "admin access required"}
)

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a store failure behind a generic message so storage details
// never leak to callers. The cause stays reachable for logging.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUpstream, Message: "storage unavailable", cause: err}
}

// KindOf extracts the kind from any error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
