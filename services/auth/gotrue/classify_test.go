package gotrueauth

import (
	"net/http"
	"testing"

	"github.com/irshadhq/irshad/core/auth"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   errorResponse
		want   auth.ErrorKind
	}{
		{
			name:   "invalid login credentials",
			status: http.StatusBadRequest,
			body:   errorResponse{Msg: "Invalid login credentials"},
			want:   auth.KindInvalidCredentials,
		},
		{
			name:   "invalid_grant",
			status: http.StatusBadRequest,
			body:   errorResponse{Error: "invalid_grant", ErrorDescription: ""},
			want:   auth.KindInvalidCredentials,
		},
		{
			name:   "email not confirmed",
			status: http.StatusBadRequest,
			body:   errorResponse{Msg: "Email not confirmed"},
			want:   auth.KindEmailUnconfirmed,
		},
		{
			name:   "already registered",
			status: http.StatusBadRequest,
			body:   errorResponse{Msg: "A user with this email address has already been registered"},
			want:   auth.KindAlreadyRegistered,
		},
		{
			name:   "422 exists",
			status: http.StatusUnprocessableEntity,
			body:   errorResponse{Msg: "User already exists"},
			want:   auth.KindAlreadyRegistered,
		},
		{
			name:   "password should be",
			status: http.StatusUnprocessableEntity,
			body:   errorResponse{Msg: "Password should be at least 6 characters"},
			want:   auth.KindWeakCredential,
		},
		{
			name:   "weak password",
			status: http.StatusUnprocessableEntity,
			body:   errorResponse{Msg: "signup requires a weak password check"},
			want:   auth.KindWeakCredential,
		},
		{
			name:   "unknown message",
			status: http.StatusInternalServerError,
			body:   errorResponse{Msg: "Database error saving new user"},
			want:   auth.KindOther,
		},
		{
			name:   "error_description fallback",
			status: http.StatusBadRequest,
			body:   errorResponse{ErrorDescription: "Invalid login credentials"},
			want:   auth.KindInvalidCredentials,
		},
		{
			name:   "empty body",
			status: http.StatusBadGateway,
			body:   errorResponse{},
			want:   auth.KindOther,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.status, tt.body)
			if got.Kind != tt.want {
				t.Errorf("classify() kind = %v, want %v", got.Kind, tt.want)
			}
		})
	}
}
