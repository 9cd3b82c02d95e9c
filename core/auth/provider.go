// Package auth defines the contract of the external authentication provider.
// The application never talks to the provider's wire protocol directly;
// everything goes through the Provider interface so dev/test deployments can
// swap in the in-process implementation.
package auth

import (
	"context"
	"time"
)

// Metadata is the arbitrary bag of attributes attached to an identity at
// sign-up (display name, phone). Keys mirror the provider's user_metadata.
type Metadata map[string]string

const (
	MetaFullName = "full_name"
	MetaPhone    = "phone"
)

// Identity is the authenticated principal as issued by the provider.
// The ID is opaque and stable across sessions.
type Identity struct {
	ID       string
	Email    string
	Metadata Metadata
}

// Session is an opaque credential issued by the provider. Presence implies
// "authenticated"; the application treats Token as a black box.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  Identity
}

// Unsubscribe detaches a session-change callback.
type Unsubscribe func()

type Provider interface {
	// SignInWithPassword verifies credentials and establishes a session.
	// State updates are delivered through OnSessionChange, not returned here.
	SignInWithPassword(ctx context.Context, email, password string) error

	// SignUp creates an account, attaching metadata for later bootstrap use.
	SignUp(ctx context.Context, email, password string, meta Metadata) error

	SignOut(ctx context.Context) error

	// CurrentSession returns any already-active session (nil when anonymous).
	// One-shot; covers startup with a persisted session, since the change
	// stream only fires on future transitions.
	CurrentSession(ctx context.Context) (*Session, error)

	// OnSessionChange subscribes to the session-change stream. The callback
	// receives nil on sign-out. Provider-originated calls MUST NOT be made
	// from within the callback; defer them to another goroutine.
	OnSessionChange(fn func(*Session)) Unsubscribe

	RequestPasswordReset(ctx context.Context, email, redirectTarget string) error

	// UpdatePassword changes the password of the currently signed-in identity.
	UpdatePassword(ctx context.Context, newPassword string) error
}

// ResetConfirmer is implemented by providers that support completing a
// password reset from a mailed token without an active session.
type ResetConfirmer interface {
	ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error
}

// SessionIssuer verifies credentials and returns the issued session without
// touching the provider's current-session state. A server handling many
// users concurrently MUST respond with the issued session, never with
// CurrentSession: that state is shared and an interleaved sign-in would leak
// another caller's token.
type SessionIssuer interface {
	IssueSession(ctx context.Context, email, password string) (*Session, error)
}

// TokenVerifier validates a bearer token and returns the session it
// represents. Invalid or expired tokens yield an auth.Error.
type TokenVerifier interface {
	VerifySession(ctx context.Context, token string) (*Session, error)
}

// SessionRevoker invalidates one bearer token where the provider keeps
// server-side session state. Stateless providers simply omit it.
type SessionRevoker interface {
	RevokeSession(ctx context.Context, token string) error
}
