package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/auth"
)

type authApi struct {
	deps ServerDeps
}

func registerAuthAPI(g *echo.Group, deps ServerDeps) {
	api := authApi{deps: deps}

	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	g.POST("/login", api.login)
	g.POST("/register", api.register)
	g.POST("/logout", api.logout)
	g.GET("/session", api.session)
	g.POST("/password-reset", api.resetPassword)
	g.POST("/password-reset-confirm", api.confirmPasswordReset)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	RegisterRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		FullName string `json:"full_name" validate:"required"`
		Phone    string `json:"phone"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	PasswordResetConfirmRequest struct {
		UID      string `json:"uid" validate:"required"`
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	SessionResponse struct {
		Authenticated bool           `json:"authenticated"`
		Token         string         `json:"token,omitempty"`
		ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
		Identity      *auth.Identity `json:"identity,omitempty"`
		Role          account.Role   `json:"role,omitempty"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (rr *RegisterRequest) Validate(validate *validator.Validate) error {
	rr.Email = core.CleanString(rr.Email, true /* lower */)
	rr.FullName = core.CleanString(rr.FullName)
	rr.Phone = core.CleanString(rr.Phone)
	return validate.Struct(rr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

func (pc *PasswordResetConfirmRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(pc)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	sess, err := api.issueSession(ctx, data.Email, data.Password)
	if err != nil {
		return err
	}
	return api.respondSession(ctx, sess)
}

// register creates the account and signs in immediately: emails are
// pre-confirmed, so a fresh registration never lands on a "check your inbox"
// wall.
func (api *authApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	meta := auth.Metadata{auth.MetaFullName: data.FullName}
	if data.Phone != "" {
		meta[auth.MetaPhone] = data.Phone
	}
	if err := api.deps.Provider.SignUp(reqCtx, data.Email, data.Password, meta); err != nil {
		return err
	}
	sess, err := api.issueSession(ctx, data.Email, data.Password)
	if err != nil {
		return err
	}
	return api.respondSession(ctx, sess)
}

// logout revokes the caller's own token where the provider supports it.
// Sessions are per-request bearer tokens, so there is no shared state to
// clear; discarding the token is the client's half of the contract.
func (api *authApi) logout(ctx echo.Context) error {
	token := bearerToken(ctx)
	if token != "" {
		if revoker, ok := api.deps.Provider.(auth.SessionRevoker); ok {
			if err := revoker.RevokeSession(ctx.Request().Context(), token); err != nil {
				return errors.Wrap(err, "revoking session")
			}
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}

// session reports the caller's snapshot without requiring auth: anonymous
// callers get {authenticated: false} instead of a 401.
func (api *authApi) session(ctx echo.Context) error {
	sess, err := verifySession(ctx, api.deps)
	if err != nil || sess == nil {
		return ctx.JSON(http.StatusOK, SessionResponse{})
	}

	role, err := api.deps.AccountSvc.Bootstrap(ctx.Request().Context(), sess.Identity)
	if err != nil {
		api.deps.Logger.Error("bootstrap failed for "+sess.Identity.ID, err)
	}
	resp := SessionResponse{
		Authenticated: true,
		Identity:      &sess.Identity,
		Role:          role,
	}
	if !sess.ExpiresAt.IsZero() {
		resp.ExpiresAt = &sess.ExpiresAt
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err := api.deps.Provider.RequestPasswordReset(ctx.Request().Context(), data.Email, "/reset-password"); err != nil {
		// do not return errors to attackers
		api.deps.Logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *authApi) confirmPasswordReset(ctx echo.Context) error {
	var data PasswordResetConfirmRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetConfirmRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	confirmer, ok := api.deps.Provider.(auth.ResetConfirmer)
	if !ok {
		return errHttpNotFound
	}
	if err := confirmer.ConfirmPasswordReset(ctx.Request().Context(), data.UID, data.Token, data.Password); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

// issueSession obtains a session for this request's credentials. The
// provider's shared current-session state is never consulted: interleaved
// requests must each get their own identity and token back.
func (api *authApi) issueSession(ctx echo.Context, email, password string) (*auth.Session, error) {
	issuer, ok := api.deps.Provider.(auth.SessionIssuer)
	if !ok {
		return nil, errors.New("auth provider cannot issue sessions")
	}
	return issuer.IssueSession(ctx.Request().Context(), email, password)
}

// respondSession resolves the just-issued session into the snapshot shape
// the clients consume.
func (api *authApi) respondSession(ctx echo.Context, sess *auth.Session) error {
	role, err := api.deps.AccountSvc.Bootstrap(ctx.Request().Context(), sess.Identity)
	if err != nil {
		api.deps.Logger.Error("bootstrap failed for "+sess.Identity.ID, err)
	}
	resp := SessionResponse{
		Authenticated: true,
		Token:         sess.Token,
		Identity:      &sess.Identity,
		Role:          role,
	}
	if !sess.ExpiresAt.IsZero() {
		resp.ExpiresAt = &sess.ExpiresAt
	}
	return ctx.JSON(http.StatusOK, resp)
}
