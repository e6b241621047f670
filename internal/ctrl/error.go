package ctrl

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a resource already exists.
var ErrAlreadyExists = errors.New("already exists")

// ErrDeviceIDRequired is returned when the device id is missing or is not
// a v4 UUID; no store access happens in that case.
var ErrDeviceIDRequired = errors.New("device id required")

type Kind string

const (
	KindSignupFailed          Kind = "signup failed"
	KindSigninFailed          Kind = "signin failed"
	KindSignoutFailed         Kind = "signout failed"
	KindTokenGenerationFailed Kind = "token generation failed"
	KindAuthenticationFailed  Kind = "authentication failed"
)

// Error is the outward-facing wrapper: one kind per orchestrator operation,
// the lower-level cause reachable through Unwrap.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Wrap tags cause with kind, unless the cause already carries that kind
// somewhere in its chain.
func Wrap(kind Kind, cause error) error {
	if HasKind(cause, kind) {
		return cause
	}
	return &Error{Kind: kind, cause: cause}
}

// HasKind walks the chain looking for an Error tagged with kind.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Unwrap()
	}
	return false
}
