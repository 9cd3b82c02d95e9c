package gotrueauth

import (
	"net/http"
	"strings"

	"github.com/irshadhq/irshad/core/auth"
)

// classify maps a GoTrue error response onto an auth.Error. This is the one
// place allowed to inspect the service's message strings; they are not part
// of any stable contract, so unrecognized messages fall back to KindOther.
func classify(status int, body errorResponse) *auth.Error {
	msg := body.Msg
	if msg == "" {
		msg = body.ErrorDescription
	}
	if msg == "" {
		msg = body.Error
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid login credentials"),
		strings.Contains(lower, "invalid_grant") && status == http.StatusBadRequest:
		return auth.NewError(auth.KindInvalidCredentials, msg)

	case strings.Contains(lower, "email not confirmed"):
		return auth.NewError(auth.KindEmailUnconfirmed, msg)

	case strings.Contains(lower, "already registered"),
		strings.Contains(lower, "already been registered"),
		status == http.StatusUnprocessableEntity && strings.Contains(lower, "exists"):
		return auth.NewError(auth.KindAlreadyRegistered, msg)

	case strings.Contains(lower, "password should be"),
		strings.Contains(lower, "weak password"):
		return auth.NewError(auth.KindWeakCredential, msg)
	}
	return auth.NewError(auth.KindOther, msg)
}
