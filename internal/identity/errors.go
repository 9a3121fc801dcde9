package identity

import (
	"github.com/myrjola/ikigai/internal/errors"
)

// Kind is the backend-agnostic reason an auth call failed.
type Kind string

const (
	KindEmailInUse    Kind = "EmailInUse"
	KindInvalidEmail  Kind = "InvalidEmail"
	KindWeakPassword  Kind = "WeakPassword"
	KindNotFound      Kind = "NotFound"
	KindBadCredential Kind = "BadCredential"
	KindUnknown       Kind = "Unknown"
)

// Error is returned by every Service operation that fails.
type Error struct {
	Kind  Kind
	cause error
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Message is safe to show to the user.
func (e *Error) Message() string {
	switch e.Kind {
	case KindEmailInUse:
		return "An account with this email already exists."
	case KindInvalidEmail:
		return "Please enter a valid email address."
	case KindWeakPassword:
		return "Password should be between 6 and 72 characters."
	case KindNotFound:
		return "No account found with this email."
	case KindBadCredential:
		return "Incorrect password. Please try again."
	case KindUnknown:
	}
	return "Something went wrong. Please try again."
}

// KindOf returns the kind of err or the empty string when err is not an identity error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
