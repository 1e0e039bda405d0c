// Package storeerr defines the three abstract error kinds storoid raises:
// schema validation failures, missing schema documents, and driver errors
// propagated verbatim from the underlying store.
package storeerr

import "fmt"

// Kind classifies a storoid error for callers that want to branch on it
// without string-matching messages.
type Kind string

const (
	KindSchema   Kind = "SCHEMA_ERROR"
	KindNotFound Kind = "NOT_FOUND"
	KindDriver   Kind = "DRIVER_ERROR"
)

// Error is the concrete type behind every error storoid returns from its
// public API.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Schema reports a schema validation failure: a missing hash attribute, an
// unknown logical type, an invalid predicate operator, and the like.
func Schema(msg string, args ...any) *Error {
	return &Error{Kind: KindSchema, Msg: fmt.Sprintf(msg, args...)}
}

// SchemaWrap is Schema with an underlying cause to unwrap to.
func SchemaWrap(msg string, cause error) *Error {
	return &Error{Kind: KindSchema, Msg: msg, Cause: cause}
}

// NotFound reports a missing schema document where one was required.
func NotFound(msg string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(msg, args...)}
}

// Driver wraps an error returned by the database driver verbatim.
func Driver(cause error) *Error {
	return &Error{Kind: KindDriver, Msg: "driver error", Cause: cause}
}

// Is reports whether err is a storoid *Error of the given kind.
func Is(err error, kind Kind) bool {
	se, ok := err.(*Error)
	return ok && se.Kind == kind
}
