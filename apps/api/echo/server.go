// Package echoapi is the HTTP surface. Every protected route tree is gated by
// the route-guard middleware, which rebuilds a session snapshot per request
// and applies the same decision table the clients use.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/assessment"
	"github.com/irshadhq/irshad/core/attendance"
	"github.com/irshadhq/irshad/core/auth"
	"github.com/irshadhq/irshad/core/course"
	"github.com/irshadhq/irshad/core/hifz"
	"github.com/irshadhq/irshad/core/library"
	"github.com/irshadhq/irshad/core/notify"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		Provider      auth.Provider
		AccountSvc    *account.Service
		CourseSvc     *course.Service
		AssessmentSvc *assessment.Service
		AttendanceSvc *attendance.Service
		HifzSvc       *hifz.Service
		NotifySvc     *notify.Service
		LibrarySvc    *library.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	registerAuthAPI(s.app.Group("/auth"), s.deps)

	v1 := s.app.Group("/v1")
	snap := snapshotMiddleware(s.deps)

	adminG := v1.Group("/dashboard/admin", snap, guardMiddleware(account.RoleAdmin))
	teacherG := v1.Group("/dashboard/teacher", snap, guardMiddleware(account.RoleTeacher))
	studentG := v1.Group("/dashboard/student", snap, guardMiddleware(account.RoleStudent))
	sharedG := v1.Group("", snap, guardMiddleware())

	registerAccountAPI(adminG, sharedG, s.deps)
	registerCourseAPI(adminG, teacherG, studentG, s.deps)
	registerAssessmentAPI(adminG, teacherG, studentG, s.deps)
	registerAttendanceAPI(teacherG, studentG, s.deps)
	registerHifzAPI(teacherG, studentG, s.deps)
	registerNotifyAPI(sharedG, s.deps)
	registerLibraryAPI(adminG, sharedG, s.deps)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errs }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown requests a graceful stop, as if SIGTERM was received.
func (s *Server) SignalShutdown() { s.shutdown <- syscall.SIGTERM }

func (s *Server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *Server) Close() error { return s.app.Close() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Irshad API!")
}
