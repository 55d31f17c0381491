package model

import (
	"errors"
	"fmt"
)

// ErrKind classifies an Error for mapping to a transport status.
type ErrKind string

const (
	KindValidation   ErrKind = "validation"   // 400
	KindUnauthorized ErrKind = "unauthorized" // 401
	KindNotFound     ErrKind = "not_found"    // 404
	KindRateLimited  ErrKind = "rate_limited" // 429
	KindInternal     ErrKind = "internal"     // 500
)

// Error is a classified error whose Message is safe to show to callers.
// Cause is kept for logs only.
type Error struct {
	Kind    ErrKind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrValidation reports a missing or malformed request field.
func ErrValidation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// ErrInvalidCredentials is the only login failure callers ever see. Unknown
// email and wrong password must stay indistinguishable.
func ErrInvalidCredentials() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Invalid credentials"}
}

// ErrUnauthorized is returned for every token failure regardless of which
// check rejected it.
func ErrUnauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

// ErrNotFound reports an unmatched route.
func ErrNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Not found"}
}

// ErrRateLimited reports a throttled caller.
func ErrRateLimited() *Error {
	return &Error{Kind: KindRateLimited, Message: "Too many requests"}
}

// ErrInternal wraps a store or infrastructure failure behind a generic message.
func ErrInternal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Cause: cause}
}
