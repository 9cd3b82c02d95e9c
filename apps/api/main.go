package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/irshadhq/irshad/apps/api/echo"
	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/assessment"
	"github.com/irshadhq/irshad/core/attendance"
	"github.com/irshadhq/irshad/core/auth"
	"github.com/irshadhq/irshad/core/course"
	"github.com/irshadhq/irshad/core/hifz"
	"github.com/irshadhq/irshad/core/library"
	"github.com/irshadhq/irshad/core/notify"
	gotrueauth "github.com/irshadhq/irshad/services/auth/gotrue"
	localauth "github.com/irshadhq/irshad/services/auth/local"
	emailsvc "github.com/irshadhq/irshad/services/email"
	logsvc "github.com/irshadhq/irshad/services/logger"
	"github.com/irshadhq/irshad/storage/database"
	sqlxrepos "github.com/irshadhq/irshad/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	accountSvc := account.NewService(sqlxrepos.NewProfileRepository(sdb), sqlxrepos.NewRoleRepository(sdb), logger)
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(sdb), sqlxrepos.NewEnrollmentRepository(sdb))
	assessmentSvc := assessment.NewService(sqlxrepos.NewTestRepository(sdb), sqlxrepos.NewResultRepository(sdb))
	attendanceSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(sdb))
	hifzSvc := hifz.NewService(sqlxrepos.NewHifzRepository(sdb))
	notifySvc := notify.NewService(sqlxrepos.NewNotificationRepository(sdb), mailSvc, logger)
	librarySvc := library.NewService(sqlxrepos.NewLibraryRepository(sdb))

	var provider auth.Provider
	switch conf.Auth.Provider {
	case "gotrue":
		provider = gotrueauth.NewProvider(conf, logger)
	default:
		provider = localauth.NewProvider(sqlxrepos.NewAuthUserStore(sdb), conf, mailSvc, logger)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Provider:      provider,
			AccountSvc:    accountSvc,
			CourseSvc:     courseSvc,
			AssessmentSvc: assessmentSvc,
			AttendanceSvc: attendanceSvc,
			HifzSvc:       hifzSvc,
			NotifySvc:     notifySvc,
			LibrarySvc:    librarySvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
