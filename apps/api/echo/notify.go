package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core/notify"
)

type notifyApi struct {
	deps ServerDeps
}

func registerNotifyAPI(sharedG *echo.Group, deps ServerDeps) {
	api := notifyApi{deps: deps}

	sharedG.GET("/notifications", api.latest)
	sharedG.POST("/notifications/:id/read", api.markRead)
	sharedG.POST("/notifications/read-all", api.markAllRead)
}

func (api *notifyApi) latest(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	ns, err := api.deps.NotifySvc.Latest(ctx.Request().Context(), ident.ID, limit)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, ns)
}

func (api *notifyApi) markRead(ctx echo.Context) error {
	if err := api.deps.NotifySvc.MarkRead(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == notify.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notifyApi) markAllRead(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	if err := api.deps.NotifySvc.MarkAllRead(ctx.Request().Context(), ident.ID); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}
