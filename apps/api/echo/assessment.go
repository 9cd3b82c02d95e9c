package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core/assessment"
)

type assessmentApi struct {
	deps ServerDeps
}

func registerAssessmentAPI(adminG, teacherG, studentG *echo.Group, deps ServerDeps) {
	api := assessmentApi{deps: deps}

	adminG.GET("/tests", api.queryAll)

	teacherG.POST("/tests", api.schedule)
	teacherG.GET("/tests", api.mine)
	teacherG.PUT("/tests/:id", api.update)
	teacherG.DELETE("/tests/:id", api.destroy)
	teacherG.POST("/tests/:id/results", api.recordResult)
	teacherG.GET("/tests/:id/results", api.results)

	studentG.GET("/tests", api.upcoming)
	studentG.GET("/results", api.myResults)
}

func (api *assessmentApi) queryAll(ctx echo.Context) error {
	tests, err := api.deps.AssessmentSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}
	return ctx.JSON(http.StatusOK, tests)
}

func (api *assessmentApi) schedule(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	var data assessment.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	data.TeacherID = null.StringFrom(ident.ID)
	if err := data.Validate(api.deps.Validate, api.deps.Translator); err != nil {
		return err
	}

	t, err := api.deps.AssessmentSvc.Schedule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "scheduling test")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *assessmentApi) mine(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	tests, err := api.deps.AssessmentSvc.QueryByTeacher(ctx.Request().Context(), ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying tests by teacher")
	}
	return ctx.JSON(http.StatusOK, tests)
}

func (api *assessmentApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	t, err := api.deps.AssessmentSvc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == assessment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting test")
	}

	if err := ctx.Bind(&t); err != nil {
		return errors.Wrap(err, "binding to Test")
	}
	t.ID = ctx.Param("id")

	t, err = api.deps.AssessmentSvc.Update(reqCtx, t)
	if err != nil {
		return errors.Wrap(err, "updating test")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *assessmentApi) destroy(ctx echo.Context) error {
	if err := api.deps.AssessmentSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assessmentApi) recordResult(ctx echo.Context) error {
	var data assessment.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	data.TestID = ctx.Param("id")
	if err := data.Validate(api.deps.Validate, api.deps.Translator); err != nil {
		return err
	}

	r, err := api.deps.AssessmentSvc.RecordResult(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording result")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *assessmentApi) results(ctx echo.Context) error {
	results, err := api.deps.AssessmentSvc.ResultsByTest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying results by test")
	}
	return ctx.JSON(http.StatusOK, results)
}

// upcoming lists tests scheduled from now on for the student's courses.
func (api *assessmentApi) upcoming(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	courseIDs, err := api.deps.CourseSvc.CourseIDs(reqCtx, ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments by student")
	}
	tests, err := api.deps.AssessmentSvc.Upcoming(reqCtx, courseIDs)
	if err != nil {
		return errors.Wrap(err, "querying upcoming tests")
	}
	return ctx.JSON(http.StatusOK, tests)
}

func (api *assessmentApi) myResults(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	results, stats, err := api.deps.AssessmentSvc.StudentStats(ctx.Request().Context(), ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying student results")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"results": results, "stats": stats})
}
