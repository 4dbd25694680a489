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

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/achievement"
	"github.com/trezcool/kokulite/core/announcement"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/report"
	"github.com/trezcool/kokulite/core/review"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
)

type (
	ServerDeps struct {
		Conf            *core.Config
		Logger          core.Logger
		Validate        *validator.Validate
		Translator      ut.Translator
		UserSvc         user.Service
		UnitSvc         unit.Service
		RosterSvc       roster.Service
		AttendanceSvc   attendance.Service
		ReportSvc       report.Service
		AchievementSvc  achievement.Service
		ReviewSvc       review.Service
		AnnouncementSvc announcement.Service
		DisableReqLogs  bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	} else {
		s.app.Logger.SetLevel(log.INFO)
	}
	s.app.Use(middleware.BodyLimit("10M"))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate)
	registerUnitAPI(v1, jwt, s.deps.UserSvc, s.deps.UnitSvc, s.deps.RosterSvc)
	registerRosterAPI(v1, jwt, s.deps.UserSvc, s.deps.RosterSvc)
	registerAttendanceAPI(v1, jwt, s.deps.UserSvc, s.deps.AttendanceSvc)
	registerReportAPI(v1, jwt, s.deps.UserSvc, s.deps.ReportSvc, s.deps.ReviewSvc)
	registerAchievementAPI(v1, jwt, s.deps.UserSvc, s.deps.AchievementSvc, s.deps.ReviewSvc)
	registerAnnouncementAPI(v1, jwt, s.deps.UserSvc, s.deps.AnnouncementSvc)
}

// Start blocks until the server stops; a failure to serve is sent on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
