// Package camera turns camera identifiers into JPEG frames through a set of
// prefix-routed adapters.
package camera

import (
	"errors"
	"fmt"
)

// ErrorKind classifies snapshot failures.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindTimeout     ErrorKind = "timeout"
	KindOffline     ErrorKind = "offline"
	KindNotFound    ErrorKind = "not_found"
	KindNetwork     ErrorKind = "network"
	KindServerError ErrorKind = "server_error"
	KindUnknown     ErrorKind = "unknown"
)

// Error is a typed snapshot failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("camera %s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind, defaulting to unknown.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// retryable reports whether a failure is worth retrying. Auth and not-found
// failures are not transient.
func retryable(err error) bool {
	switch KindOf(err) {
	case KindAuth, KindNotFound:
		return false
	default:
		return true
	}
}
