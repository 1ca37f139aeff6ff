// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
	emailsvc "github.com/trezcool/scola/services/email"
	logsvc "github.com/trezcool/scola/services/logger"
	inmemkv "github.com/trezcool/scola/storage/kv/inmem"
)

// NewConfig returns a TEST mode config using the in-memory store.
func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		Build:            "test",
		AppName:          "SCOLA",
		SecretKey:        "test-secret",
		Debug:            false,
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "SCOLA <noreply@scola.test>",
		Server: core.ServerConfig{
			Host:                      ":0",
			DisableReqLogs:            true,
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		Database: core.DatabaseConfig{Engine: "inmem"},
		Quiz: core.QuizConfig{
			QuestionTimeout:  30 * time.Second,
			QuestionsPerQuiz: 5,
		},
	}
}

// NewLogger returns a logger discarding everything.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// NewMailer parses the email templates and returns a mailer recording the sent messages.
func NewMailer(conf *core.Config) *emailsvc.ConsoleServiceMock {
	logger := NewLogger(conf)
	core.ParseEmailTemplates(logger, true /* strict */)
	return emailsvc.NewConsoleServiceMock(conf, logger)
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// NewStore returns an empty in-memory store, closed at the end of the test.
func NewStore(t *testing.T) core.KVStore {
	store := inmemkv.New()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// FreezeTime makes core.Now return `at` until the end of the test.
func FreezeTime(t *testing.T, at time.Time) {
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { core.NowFunc = orig })
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateStudent creates an active student of grade.
func CreateStudent(t *testing.T, repo user.Repository, name, email, number, grade string) user.User {
	usr := CreateUser(t, repo, name, email, "", user.RoleStudent, true)
	usr.StudentNumber = number
	usr.Grade = grade
	usr, err := repo.UpdateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return usr
}

// UpdateUser persists usr as is.
func UpdateUser(t *testing.T, repo user.Repository, usr user.User) user.User {
	usr, err := repo.UpdateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}
	return usr
}
