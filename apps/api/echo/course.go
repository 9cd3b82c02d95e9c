package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core/course"
)

type courseApi struct {
	deps ServerDeps
}

func registerCourseAPI(adminG, teacherG, studentG *echo.Group, deps ServerDeps) {
	api := courseApi{deps: deps}

	adminG.POST("/courses", api.create)
	adminG.GET("/courses", api.queryAll)
	adminG.GET("/courses/:id", api.retrieve)
	adminG.PUT("/courses/:id", api.update)
	adminG.DELETE("/courses/:id", api.destroy)
	adminG.GET("/enrollments", api.enrollments)
	adminG.POST("/enrollments", api.enroll)
	adminG.DELETE("/enrollments/:id", api.unenroll)

	teacherG.GET("/courses", api.mine)
	teacherG.GET("/courses/:id/students", api.students)

	studentG.GET("/courses", api.enrolled)
}

type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.deps.Validate, api.deps.Translator); err != nil {
		return err
	}

	c, err := api.deps.CourseSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) queryAll(ctx echo.Context) error {
	courses, err := api.deps.CourseSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := api.deps.CourseSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}

	c, err := api.deps.CourseSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.deps.CourseSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) enrollments(ctx echo.Context) error {
	es, err := api.deps.CourseSvc.Enrollments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, es)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	e, err := api.deps.CourseSvc.Enroll(ctx.Request().Context(), data.StudentID, data.CourseID)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *courseApi) unenroll(ctx echo.Context) error {
	if err := api.deps.CourseSvc.Unenroll(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// mine lists the courses assigned to the requesting teacher.
func (api *courseApi) mine(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	courses, err := api.deps.CourseSvc.QueryByTeacher(ctx.Request().Context(), ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying courses by teacher")
	}
	return ctx.JSON(http.StatusOK, courses)
}

// students lists the roster of a course with display names.
func (api *courseApi) students(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	ids, err := api.deps.CourseSvc.StudentIDs(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying course roster")
	}
	names, err := api.deps.AccountSvc.NamesByUserID(reqCtx, ids)
	if err != nil {
		return errors.Wrap(err, "resolving roster names")
	}

	type rosterEntry struct {
		StudentID string `json:"student_id"`
		FullName  string `json:"full_name"`
	}
	roster := make([]rosterEntry, 0, len(ids))
	for _, id := range ids {
		roster = append(roster, rosterEntry{StudentID: id, FullName: names[id]})
	}
	return ctx.JSON(http.StatusOK, roster)
}

// enrolled lists the requesting student's courses.
func (api *courseApi) enrolled(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	ids, err := api.deps.CourseSvc.CourseIDs(reqCtx, ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments by student")
	}
	courses := make([]course.Course, 0, len(ids))
	for _, id := range ids {
		c, err := api.deps.CourseSvc.GetByID(reqCtx, id)
		if err != nil {
			if errors.Cause(err) == course.ErrNotFound {
				continue
			}
			return errors.Wrap(err, "getting course")
		}
		courses = append(courses, c)
	}
	return ctx.JSON(http.StatusOK, courses)
}
