package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
)

type accountApi struct {
	deps ServerDeps
}

func registerAccountAPI(adminG, sharedG *echo.Group, deps ServerDeps) {
	api := accountApi{deps: deps}

	adminG.GET("/users", api.directory)
	adminG.PUT("/users/:id/role", api.setRole)
	adminG.GET("/teachers", api.teacherOptions)

	sharedG.GET("/profile", api.profile)
	sharedG.PUT("/profile", api.updateProfile)
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName  string      `json:"full_name"`
	Phone     null.String `json:"phone"`
	AvatarURL null.String `json:"avatar_url"`
}

func (api *accountApi) directory(ctx echo.Context) error {
	members, err := api.deps.AccountSvc.Directory(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying member directory")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *accountApi) setRole(ctx echo.Context) error {
	var data SetRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetRoleRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	role, err := account.ParseRole(data.Role)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "role", Error: err.Error()})
	}

	ra, err := api.deps.AccountSvc.SetRole(ctx.Request().Context(), ctx.Param("id"), role)
	if err != nil {
		return errors.Wrap(err, "setting role")
	}
	return ctx.JSON(http.StatusOK, ra)
}

func (api *accountApi) teacherOptions(ctx echo.Context) error {
	opts, err := api.deps.AccountSvc.TeacherOptions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teacher options")
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *accountApi) profile(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	p, err := api.deps.AccountSvc.GetProfile(ctx.Request().Context(), ident.ID)
	if err != nil {
		if errors.Cause(err) == account.ErrProfileNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *accountApi) updateProfile(ctx echo.Context) error {
	ident, err := mustIdentity(ctx)
	if err != nil {
		return err
	}

	var data UpdateProfileRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfileRequest")
	}

	p, err := api.deps.AccountSvc.UpdateProfile(ctx.Request().Context(), ident.ID, account.UpdateProfile{
		FullName:  data.FullName,
		Phone:     data.Phone,
		AvatarURL: data.AvatarURL,
	})
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, p)
}
