// Package session owns the current identity, session token and resolved role.
// It orchestrates the first-login bootstrap (profile + default role rows) and
// exposes a reactive snapshot consumed by the route guard and, through it,
// every screen.
package session

import (
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/auth"
)

// Snapshot is the reactive value exposed to the rest of the application.
// Role is non-empty only after bootstrap has completed for the current
// identity. Loading is true from the moment an identity becomes non-nil until
// role resolution completes, and during the initial session check.
type Snapshot struct {
	Identity *auth.Identity
	Session  *auth.Session
	Role     account.Role // "" while unknown
	Loading  bool
}

func (s Snapshot) Authenticated() bool { return s.Identity != nil }
func (s Snapshot) RoleKnown() bool     { return s.Role != "" }

// Ready reports whether the snapshot is stable for guard decisions:
// either anonymous, or authenticated with bootstrap completed.
func (s Snapshot) Ready() bool { return !s.Loading }
