package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/attendance"
)

type attendanceApi struct {
	deps ServerDeps
}

func registerAttendanceAPI(teacherG, studentG *echo.Group, deps ServerDeps) {
	api := attendanceApi{deps: deps}

	teacherG.POST("/attendance", api.record)
	teacherG.GET("/attendance", api.sheet)

	studentG.GET("/attendance", api.mine)
}

type RecordAttendanceRequest struct {
	CourseID string            `json:"course_id" validate:"required"`
	Date     string            `json:"date" validate:"required"`
	Statuses map[string]string `json:"statuses" validate:"required"`
}

// record saves a full attendance sheet; re-submitting a day replaces it.
func (api *attendanceApi) record(ctx echo.Context) error {
	var data RecordAttendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordAttendanceRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	statuses := make(map[string]attendance.Status, len(data.Statuses))
	for studentID, s := range data.Statuses {
		status, err := attendance.ParseStatus(s)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "statuses", Error: err.Error()})
		}
		statuses[studentID] = status
	}

	records, err := api.deps.AttendanceSvc.BulkRecord(ctx.Request().Context(), data.CourseID, data.Date, statuses)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, records)
}

func (api *attendanceApi) sheet(ctx echo.Context) error {
	records, err := api.deps.AttendanceSvc.Sheet(
		ctx.Request().Context(), ctx.QueryParam("course_id"), ctx.QueryParam("date"))
	if err != nil {
		return errors.Wrap(err, "querying attendance sheet")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) mine(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	records, stats, err := api.deps.AttendanceSvc.StudentStats(ctx.Request().Context(), ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying student attendance")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"records": records, "stats": stats})
}
