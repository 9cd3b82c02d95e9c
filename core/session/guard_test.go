package session

import (
	"testing"

	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/auth"
)

func snapOf(ident *auth.Identity, role account.Role, loading bool) Snapshot {
	var sess *auth.Session
	if ident != nil {
		sess = &auth.Session{Token: "tok", Identity: *ident}
	}
	return Snapshot{Identity: ident, Session: sess, Role: role, Loading: loading}
}

func TestDecide(t *testing.T) {
	ident := &auth.Identity{ID: "u1", Email: "awe@test.cd"}

	tests := []struct {
		name    string
		snap    Snapshot
		allowed []account.Role
		want    Decision
	}{
		{
			name: "loading is pending",
			snap: snapOf(nil, "", true),
			want: Decision{Kind: DecisionPending},
		},
		{
			name: "loading with identity is still pending",
			snap: snapOf(ident, "", true), allowed: []account.Role{account.RoleAdmin},
			want: Decision{Kind: DecisionPending},
		},
		{
			name: "anonymous redirects to login",
			snap: snapOf(nil, "", false), allowed: []account.Role{account.RoleStudent},
			want: Decision{Kind: DecisionRedirectLogin, Redirect: LoginPath},
		},
		{
			name: "no allow-list renders for any authenticated user",
			snap: snapOf(ident, account.RoleStudent, false),
			want: Decision{Kind: DecisionRender},
		},
		{
			name: "no allow-list renders even with unknown role",
			snap: snapOf(ident, "", false),
			want: Decision{Kind: DecisionRender},
		},
		{
			name: "matching role renders",
			snap: snapOf(ident, account.RoleTeacher, false), allowed: []account.Role{account.RoleTeacher},
			want: Decision{Kind: DecisionRender},
		},
		{
			name: "one of several allowed roles renders",
			snap: snapOf(ident, account.RoleTeacher, false), allowed: []account.Role{account.RoleAdmin, account.RoleTeacher},
			want: Decision{Kind: DecisionRender},
		},
		{
			name: "teacher on admin view redirects to own landing",
			snap: snapOf(ident, account.RoleTeacher, false), allowed: []account.Role{account.RoleAdmin},
			want: Decision{Kind: DecisionRedirectHome, Redirect: "/dashboard/teacher"},
		},
		{
			name: "student on teacher view redirects to own landing",
			snap: snapOf(ident, account.RoleStudent, false), allowed: []account.Role{account.RoleTeacher},
			want: Decision{Kind: DecisionRedirectHome, Redirect: "/dashboard/student"},
		},
		{
			name: "unknown role on gated view stays pending",
			snap: snapOf(ident, "", false), allowed: []account.Role{account.RoleAdmin},
			want: Decision{Kind: DecisionPending},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.snap, tt.allowed...); got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecidePublic(t *testing.T) {
	ident := &auth.Identity{ID: "u1", Email: "awe@test.cd"}

	tests := []struct {
		name string
		snap Snapshot
		want Decision
	}{
		{
			name: "anonymous renders auth screens",
			snap: snapOf(nil, "", false),
			want: Decision{Kind: DecisionRender},
		},
		{
			name: "loading renders (no premature bounce)",
			snap: snapOf(ident, "", true),
			want: Decision{Kind: DecisionRender},
		},
		{
			name: "role unknown renders",
			snap: snapOf(ident, "", false),
			want: Decision{Kind: DecisionRender},
		},
		{
			name: "resolved admin bounces to admin landing",
			snap: snapOf(ident, account.RoleAdmin, false),
			want: Decision{Kind: DecisionRedirectHome, Redirect: "/dashboard/admin"},
		},
		{
			name: "resolved student bounces to student landing",
			snap: snapOf(ident, account.RoleStudent, false),
			want: Decision{Kind: DecisionRedirectHome, Redirect: "/dashboard/student"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecidePublic(tt.snap); got != tt.want {
				t.Errorf("DecidePublic() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
