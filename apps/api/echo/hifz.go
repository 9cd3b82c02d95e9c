package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/hifz"
)

type hifzApi struct {
	deps ServerDeps
}

func registerHifzAPI(teacherG, studentG *echo.Group, deps ServerDeps) {
	api := hifzApi{deps: deps}

	teacherG.POST("/hifz", api.record)
	teacherG.PUT("/hifz/:id", api.update)
	teacherG.DELETE("/hifz/:id", api.destroy)
	teacherG.GET("/students/:id/hifz", api.byStudent)

	studentG.GET("/hifz", api.mine)
}

func (api *hifzApi) record(ctx echo.Context) error {
	var data hifz.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := data.Validate(api.deps.Validate, api.deps.Translator); err != nil {
		return err
	}

	e, err := api.deps.HifzSvc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording progress entry")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *hifzApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	e, err := api.deps.HifzSvc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == hifz.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting progress entry")
	}

	if err := ctx.Bind(&e); err != nil {
		return errors.Wrap(err, "binding to Entry")
	}
	e.ID = ctx.Param("id")
	if _, err := hifz.ParseStatus(string(e.Status)); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}

	e, err = api.deps.HifzSvc.Update(reqCtx, e)
	if err != nil {
		return errors.Wrap(err, "updating progress entry")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *hifzApi) destroy(ctx echo.Context) error {
	if err := api.deps.HifzSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting progress entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *hifzApi) byStudent(ctx echo.Context) error {
	entries, summary, err := api.deps.HifzSvc.StudentSummary(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying student progress")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"entries": entries, "summary": summary})
}

func (api *hifzApi) mine(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	entries, summary, err := api.deps.HifzSvc.StudentSummary(ctx.Request().Context(), ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying student progress")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"entries": entries, "summary": summary})
}
