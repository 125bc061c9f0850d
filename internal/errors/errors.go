package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure for callers that branch on the cause rather
// than the message.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindCorruptObject      Kind = "CORRUPT_OBJECT"
	KindAlreadyInitialized Kind = "ALREADY_INITIALIZED"
	KindIOFailure          Kind = "IO_FAILURE"
)

// Error carries a failure kind alongside the message shown to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a reference that does not resolve to a stored object or
// repository.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// CorruptObject reports stored bytes that fail decoding or validation.
func CorruptObject(format string, args ...any) *Error {
	return &Error{Kind: KindCorruptObject, Message: fmt.Sprintf(format, args...)}
}

// AlreadyInitialized reports an init target that already holds a repository.
func AlreadyInitialized(format string, args ...any) *Error {
	return &Error{Kind: KindAlreadyInitialized, Message: fmt.Sprintf(format, args...)}
}

// IOFailure wraps an underlying filesystem or storage error. err may be nil
// when the failure has no lower-level cause.
func IOFailure(err error, format string, args ...any) *Error {
	return &Error{Kind: KindIOFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or the empty kind when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNotFound(err error) bool           { return KindOf(err) == KindNotFound }
func IsCorruptObject(err error) bool      { return KindOf(err) == KindCorruptObject }
func IsAlreadyInitialized(err error) bool { return KindOf(err) == KindAlreadyInitialized }
func IsIOFailure(err error) bool          { return KindOf(err) == KindIOFailure }
