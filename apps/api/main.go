package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers the /debug/pprof handlers
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	echoapi "github.com/trezcool/scola/apps/api/echo"
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
	emailsvc "github.com/trezcool/scola/services/email"
	logsvc "github.com/trezcool/scola/services/logger"
	"github.com/trezcool/scola/storage/kv"
	"github.com/trezcool/scola/storage/kvrepos"
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
	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up store
	store, err := kv.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening store: %v", err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()
	if err = kv.Migrate(store, conf.Database.Engine); err != nil {
		dbLogger.Fatal(fmt.Sprintf("migrating store: %v", err), err)
	}

	// set up repositories
	usrRepo := kvrepos.NewUserRepository(store)
	tutorRepo := kvrepos.NewTutorRepository(store)

	if conf.SeedDemoData {
		seedDemoData(dbLogger, usrRepo, tutorRepo)
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(usrRepo, validate)
	tutorSvc := tutor.NewService(tutorRepo, usrSvc, mailSvc, validate)
	perfSvc := performance.NewService(kvrepos.NewPerformanceRepository(store), tutorSvc, validate)
	assignmentSvc := assignment.NewService(kvrepos.NewAssignmentRepository(store), validate)
	attendanceSvc := attendance.NewService(kvrepos.NewAttendanceRepository(store), usrSvc, validate)
	calendarSvc := calendar.NewService(kvrepos.NewCalendarRepository(store), validate)
	messageSvc := message.NewService(kvrepos.NewMessageRepository(store), usrSvc, validate)
	peerChatSvc := peerchat.NewService(kvrepos.NewPeerChatRepository(store), validate)
	quizSvc := quiz.NewService(kvrepos.NewQuizRepository(store), usrSvc, conf.Quiz)
	meetingSvc := meeting.NewService(kvrepos.NewMeetingRepository(store), usrSvc, mailSvc, validate)
	reportSvc := report.NewService(kvrepos.NewReportRepository(store), validate)
	dashboardSvc := dashboard.NewService(
		usrSvc, perfSvc, assignmentSvc, quizSvc, tutorSvc, meetingSvc, reportSvc,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("db_engine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			Registerer:     registry,
			Gatherer:       registry,
			UserSvc:        usrSvc,
			PerformanceSvc: perfSvc,
			AssignmentSvc:  assignmentSvc,
			AttendanceSvc:  attendanceSvc,
			CalendarSvc:    calendarSvc,
			MessageSvc:     messageSvc,
			PeerChatSvc:    peerChatSvc,
			QuizSvc:        quizSvc,
			TutorSvc:       tutorSvc,
			MeetingSvc:     meetingSvc,
			ReportSvc:      reportSvc,
			DashboardSvc:   dashboardSvc,
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

func seedDemoData(logger core.Logger, usrRepo user.Repository, tutorRepo tutor.Repository) {
	ctx := context.Background()
	n, err := user.SeedDemoData(ctx, usrRepo)
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding demo users: %v", err), err)
	}
	if n > 0 {
		logger.Info(fmt.Sprintf("created %d demo users", n))
	}
	if n, err = tutor.SeedDemoData(ctx, tutorRepo); err != nil {
		logger.Fatal(fmt.Sprintf("seeding demo tutors: %v", err), err)
	}
	if n > 0 {
		logger.Info(fmt.Sprintf("created %d demo tutors", n))
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
