package auth

import "github.com/pkg/errors"

// ErrorKind classifies provider failures for explicit user action.
// Providers must map their wire errors onto these kinds in one place;
// no message-substring matching is allowed outside provider adapters.
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "invalid-credentials"
	KindEmailUnconfirmed   ErrorKind = "email-unconfirmed"
	KindAlreadyRegistered  ErrorKind = "already-registered"
	KindWeakCredential     ErrorKind = "weak-credential"
	KindOther              ErrorKind = "other"
)

// Error is the only error type surfaced across the provider boundary.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return e.Msg
}

// KindOf extracts the ErrorKind from err, unwrapping pkg/errors chains.
// Non-auth errors classify as KindOther.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if aerr, ok := errors.Cause(err).(*Error); ok {
		return aerr.Kind
	}
	return KindOther
}
