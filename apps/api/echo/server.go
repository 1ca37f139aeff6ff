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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/assignment"
	"github.com/trezcool/scola/core/attendance"
	"github.com/trezcool/scola/core/calendar"
	"github.com/trezcool/scola/core/dashboard"
	"github.com/trezcool/scola/core/meeting"
	"github.com/trezcool/scola/core/message"
	"github.com/trezcool/scola/core/peerchat"
	"github.com/trezcool/scola/core/performance"
	"github.com/trezcool/scola/core/quiz"
	"github.com/trezcool/scola/core/report"
	"github.com/trezcool/scola/core/tutor"
	"github.com/trezcool/scola/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		// Registerer receives the HTTP metrics. A new registry is used if nil.
		Registerer prometheus.Registerer
		Gatherer   prometheus.Gatherer

		UserSvc        *user.Service
		PerformanceSvc *performance.Service
		AssignmentSvc  *assignment.Service
		AttendanceSvc  *attendance.Service
		CalendarSvc    *calendar.Service
		MessageSvc     *message.Service
		PeerChatSvc    *peerchat.Service
		QuizSvc        *quiz.Service
		TutorSvc       *tutor.Service
		MeetingSvc     *meeting.Service
		ReportSvc      *report.Service
		DashboardSvc   *dashboard.Service
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		auth:       newAuthenticator(deps.Conf, deps.UserSvc),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)

	if s.Registerer == nil {
		reg := prometheus.NewRegistry()
		s.Registerer, s.Gatherer = reg, reg
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(metricsMiddleware(s.Registerer))
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.GET("/", s.home)
	s.app.GET("/metrics", metricsHandler(s.Gatherer))

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)

	registerUserAPI(v1, jwt, s.auth, s.UserSvc)
	registerDashboardAPI(v1, jwt, s.auth, s.DashboardSvc)
	registerPerformanceAPI(v1, jwt, s.auth, s.PerformanceSvc)
	registerAssignmentAPI(v1, jwt, s.auth, s.AssignmentSvc)
	registerAttendanceAPI(v1, jwt, s.auth, s.AttendanceSvc)
	registerCalendarAPI(v1, jwt, s.auth, s.CalendarSvc)
	registerMessageAPI(v1, jwt, s.auth, s.MessageSvc)
	registerPeerChatAPI(v1, jwt, s.auth, s.PeerChatSvc)
	registerQuizAPI(v1, jwt, s.auth, s.QuizSvc)
	registerTutorAPI(v1, jwt, s.auth, s.TutorSvc)
	registerMeetingAPI(v1, jwt, s.auth, s.MeetingSvc)
	registerReportAPI(v1, jwt, s.auth, s.ReportSvc)
}

// Start listens on conf.Server.Host. Listening errors are sent to Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.Conf.AppName+" API!")
}
