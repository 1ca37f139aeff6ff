package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/scola/apps/api/echo"
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
	"github.com/trezcool/scola/services/email"
	"github.com/trezcool/scola/storage/kvrepos"
	"github.com/trezcool/scola/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*Server
	conf    *core.Config
	store   core.KVStore
	usrRepo user.Repository
	mailer  *emailsvc.ConsoleServiceMock
}

// setup starts an API over a fresh in-memory store seeded with the demo tutors.
func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	validate, translator := testutil.NewValidator()
	store := testutil.NewStore(t)
	mailer := testutil.NewMailer(conf)

	usrRepo := kvrepos.NewUserRepository(store)
	tutorRepo := kvrepos.NewTutorRepository(store)
	_, err := tutor.SeedDemoData(context.Background(), tutorRepo)
	require.NoError(t, err)

	usrSvc := user.NewService(usrRepo, validate)
	tutorSvc := tutor.NewService(tutorRepo, usrSvc, mailer, validate)
	perfSvc := performance.NewService(kvrepos.NewPerformanceRepository(store), tutorSvc, validate)
	assignmentSvc := assignment.NewService(kvrepos.NewAssignmentRepository(store), validate)
	quizSvc := quiz.NewService(kvrepos.NewQuizRepository(store), usrSvc, conf.Quiz)
	meetingSvc := meeting.NewService(kvrepos.NewMeetingRepository(store), usrSvc, mailer, validate)
	reportSvc := report.NewService(kvrepos.NewReportRepository(store), validate)
	reg := prometheus.NewRegistry()

	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		Registerer:     reg,
		Gatherer:       reg,
		UserSvc:        usrSvc,
		PerformanceSvc: perfSvc,
		AssignmentSvc:  assignmentSvc,
		AttendanceSvc:  attendance.NewService(kvrepos.NewAttendanceRepository(store), usrSvc, validate),
		CalendarSvc:    calendar.NewService(kvrepos.NewCalendarRepository(store), validate),
		MessageSvc:     message.NewService(kvrepos.NewMessageRepository(store), usrSvc, validate),
		PeerChatSvc:    peerchat.NewService(kvrepos.NewPeerChatRepository(store), validate),
		QuizSvc:        quizSvc,
		TutorSvc:       tutorSvc,
		MeetingSvc:     meetingSvc,
		ReportSvc:      reportSvc,
		DashboardSvc:   dashboard.NewService(usrSvc, perfSvc, assignmentSvc, quizSvc, tutorSvc, meetingSvc, reportSvc),
	})
	return &testApp{Server: srv, conf: conf, store: store, usrRepo: usrRepo, mailer: mailer}
}

// tickClock makes core.Now start a minute ago and advance by a millisecond on every call,
// so that records created in a row are strictly ordered while tokens stay valid.
func tickClock(t *testing.T) {
	var mu sync.Mutex
	clock := time.Now().UTC().Add(-time.Minute)
	orig := core.NowFunc
	core.NowFunc = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Millisecond)
		return clock
	}
	t.Cleanup(func() { core.NowFunc = orig })
}

// do serves a JSON request.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	return getToken(t, app.conf, usr)
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

// newUploadRequest builds a multipart/form-data request carrying fields and a `file` part (if filename is set).
func newUploadRequest(t *testing.T, path, token string, fields map[string]string, filename string, content []byte) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(usr, conf)
	token, err := GenerateToken(claims, conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = make([]interface{}, 0)
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarshall() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}
