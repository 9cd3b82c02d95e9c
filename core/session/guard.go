package session

import "github.com/irshadhq/irshad/core/account"

// DecisionKind is what the presentation layer should do with a request for a
// protected view.
type DecisionKind int

const (
	// DecisionPending: render nothing yet; identity or role still resolving.
	DecisionPending DecisionKind = iota
	// DecisionRender: show the protected content.
	DecisionRender
	// DecisionRedirectLogin: anonymous; send to the sign-in screen.
	DecisionRedirectLogin
	// DecisionRedirectHome: authenticated but wrong role; send to the
	// landing area of the user's own role.
	DecisionRedirectHome
)

type Decision struct {
	Kind     DecisionKind
	Redirect string // target path for the redirect kinds
}

const LoginPath = "/login"

var landingPaths = map[account.Role]string{
	account.RoleAdmin:   "/dashboard/admin",
	account.RoleTeacher: "/dashboard/teacher",
	account.RoleStudent: "/dashboard/student",
}

// LandingPath returns the dashboard root for a role.
func LandingPath(role account.Role) string { return landingPaths[role] }

// Decide is the route guard: a pure function of the snapshot and the view's
// role allow-list. It never renders protected content for an unauthenticated
// identity, and never redirects a user away from their own landing area.
func Decide(snap Snapshot, allowed ...account.Role) Decision {
	if snap.Loading {
		return Decision{Kind: DecisionPending}
	}
	if !snap.Authenticated() {
		return Decision{Kind: DecisionRedirectLogin, Redirect: LoginPath}
	}
	if len(allowed) == 0 {
		return Decision{Kind: DecisionRender}
	}
	if !snap.RoleKnown() {
		// should not occur once loading is false, per the Ready invariant;
		// guard defensively instead of granting or denying
		return Decision{Kind: DecisionPending}
	}
	for _, role := range allowed {
		if role == snap.Role {
			return Decision{Kind: DecisionRender}
		}
	}
	return Decision{Kind: DecisionRedirectHome, Redirect: LandingPath(snap.Role)}
}

// DecidePublic gates the public auth screens (/login, /register, ...): a
// fully resolved identity is redirected to its own landing area instead.
func DecidePublic(snap Snapshot) Decision {
	if snap.Ready() && snap.Authenticated() && snap.RoleKnown() {
		return Decision{Kind: DecisionRedirectHome, Redirect: LandingPath(snap.Role)}
	}
	return Decision{Kind: DecisionRender}
}
