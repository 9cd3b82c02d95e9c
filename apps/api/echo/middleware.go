package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/session"
)

// guardMiddleware applies the route-guard decision table to the request
// snapshot. No allowed roles means any authenticated identity may pass.
func guardMiddleware(allowed ...account.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			snap, err := getContextSnapshot(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context snapshot")
			}

			switch d := session.Decide(snap, allowed...); d.Kind {
			case session.DecisionRender:
				return next(ctx)
			case session.DecisionRedirectLogin:
				return errUnauthorized
			case session.DecisionRedirectHome:
				return ctx.JSON(http.StatusForbidden, echo.Map{"redirect": d.Redirect})
			default: // DecisionPending: role still resolving
				return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "pending"})
			}
		}
	}
}
