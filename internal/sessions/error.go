package sessions

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no session row exists for the (user, device) pair.
	ErrNotFound = errors.New("session not found")
	// ErrExpired means the session's expiry is at or before now.
	ErrExpired = errors.New("session expired")
	// ErrInvalidToken means the presented refresh secret does not hash to
	// the stored value; the secret was already rotated or never issued.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrLimitExceeded is warning-level: the session was created but the
	// cap-eviction step failed. It must never block authentication.
	ErrLimitExceeded = errors.New("session limit enforcement failed")
)

type Kind string

const (
	KindCreationFailed   Kind = "session creation failed"
	KindValidationFailed Kind = "session validation failed"
	KindRefreshFailed    Kind = "session refresh failed"
)

// Error tags a lower-level cause with the manager operation that failed.
// The cause stays reachable through Unwrap.
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

// Wrap tags cause with kind. A cause already tagged with the same kind is
// returned unchanged, so a kind appears at most once in any chain.
func Wrap(kind Kind, cause error) error {
	var se *Error
	if errors.As(cause, &se) && se.Kind == kind {
		return cause
	}
	return &Error{Kind: kind, cause: cause}
}
