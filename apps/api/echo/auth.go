package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core/auth"
	"github.com/irshadhq/irshad/core/session"
)

const contextSnapshotKey = "sessionSnapshot"

// bearerToken extracts the bearer credential from the Authorization header;
// empty when absent or malformed.
func bearerToken(ctx echo.Context) string {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// verifySession validates the request's bearer token through the configured
// provider, so token introspection follows whatever backend issued it.
func verifySession(ctx echo.Context, deps ServerDeps) (*auth.Session, error) {
	token := bearerToken(ctx)
	if token == "" {
		return nil, nil
	}
	verifier, ok := deps.Provider.(auth.TokenVerifier)
	if !ok {
		return nil, errors.New("auth provider cannot verify tokens")
	}
	return verifier.VerifySession(ctx.Request().Context(), token)
}

// snapshotMiddleware rebuilds a session snapshot for the request's identity.
// The bootstrap is idempotent, so running it per request is two point reads
// once the rows exist; its profile/role semantics are identical to the client
// sign-in path.
func snapshotMiddleware(deps ServerDeps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := verifySession(ctx, deps)
			if err != nil || sess == nil {
				// anonymous; the guard redirects to login
				ctx.Set(contextSnapshotKey, session.Snapshot{})
				return next(ctx)
			}

			ident := sess.Identity
			snap := session.Snapshot{Identity: &ident}
			role, err := deps.AccountSvc.Bootstrap(ctx.Request().Context(), ident)
			if err != nil {
				// role stays unresolved; the guard keeps the user pending
				deps.Logger.Error("bootstrap failed for "+ident.ID, err)
			}
			snap.Role = role

			ctx.Set(contextSnapshotKey, snap)
			return next(ctx)
		}
	}
}

func getContextSnapshot(ctx echo.Context) (session.Snapshot, error) {
	if snap, ok := ctx.Get(contextSnapshotKey).(session.Snapshot); ok {
		return snap, nil
	}
	return session.Snapshot{}, errors.New("session snapshot not found in echo.Context")
}

// mustIdentity returns the request identity; guarded routes always have one.
func mustIdentity(ctx echo.Context) (auth.Identity, error) {
	snap, err := getContextSnapshot(ctx)
	if err != nil || snap.Identity == nil {
		return auth.Identity{}, errUnauthorized
	}
	return *snap.Identity, nil
}
