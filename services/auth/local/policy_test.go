package localauth

import (
	"testing"

	"github.com/irshadhq/irshad/core/auth"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		attrs   []string
		wantMsg string
	}{
		{name: "too short", pwd: "aB1!", wantMsg: "password must contain at least 8 characters"},
		{name: "whitespace", pwd: "correct horse B1!", wantMsg: "password must not contain whitespace"},
		{name: "all numeric", pwd: "12345678", wantMsg: "password cannot be entirely numeric"},
		{name: "no uppercase", pwd: "tr0ub4dor&3", wantMsg: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "no digit", pwd: "Troubador&!", wantMsg: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "no special", pwd: "Tr0ub4dor3", wantMsg: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "similar to email", pwd: "Awe@test.cd1", attrs: []string{"awe@test.cd"}, wantMsg: "password cannot be similar to user attributes"},
		{name: "empty attrs skipped", pwd: "Tr0ub4dor&3", attrs: []string{""}},
		{name: "strong", pwd: "Tr0ub4dor&3", attrs: []string{"awe@test.cd", "Awe Mose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.pwd, tt.attrs...)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("CheckPassword() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("CheckPassword() expected error")
			}
			if auth.KindOf(err) != auth.KindWeakCredential {
				t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindWeakCredential)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("err = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
