package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core/library"
)

type libraryApi struct {
	deps ServerDeps
}

func registerLibraryAPI(adminG, sharedG *echo.Group, deps ServerDeps) {
	api := libraryApi{deps: deps}

	sharedG.GET("/library", api.list)
	adminG.POST("/library", api.add)
	adminG.DELETE("/library/:id", api.destroy)
}

func (api *libraryApi) list(ctx echo.Context) error {
	rs, err := api.deps.LibrarySvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying library resources")
	}
	return ctx.JSON(http.StatusOK, rs)
}

func (api *libraryApi) add(ctx echo.Context) error {
	var data library.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	r, err := api.deps.LibrarySvc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding library resource")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *libraryApi) destroy(ctx echo.Context) error {
	if err := api.deps.LibrarySvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting library resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}
