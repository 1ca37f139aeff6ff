package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scola/core/tutor"
	"github.com/trezcool/scola/core/user"
	"github.com/trezcool/scola/tests"
)

func tutorNames(t *testing.T, app *testApp, path, token string) []string {
	rec := app.do(http.MethodGet, path, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tutors []tutor.Tutor
	unmarshall(t, rec, &tutors)
	names := make([]string, 0, len(tutors))
	for _, tut := range tutors {
		names = append(names, tut.Name)
	}
	return names
}

func Test_tutorApi_query(t *testing.T) {
	app := setup(t)
	student := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	token := app.token(t, student)

	app.run(t, []httpTest{
		{name: "auth required", path: "/v1/tutors", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "not found", path: "/v1/tutors/lol", token: token, wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "tutor not found"})},
	})

	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "best rated first", path: "/v1/tutors", want: []string{"Prof. Michael Chen", "Dr. Sarah Wilson", "Ms. Emily Davis"}},
		{name: "search", path: "/v1/tutors?search=EMILY", want: []string{"Ms. Emily Davis"}},
		{name: "subject", path: "/v1/tutors?subject=science", want: []string{"Prof. Michael Chen"}},
		{name: "recommended", path: "/v1/tutors/recommended?subject=Mathematics,English", want: []string{"Dr. Sarah Wilson", "Ms. Emily Davis"}},
		{name: "recommended: unknown subject", path: "/v1/tutors/recommended?subject=Art", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tutorNames(t, app, tt.path, token))
		})
	}

	t.Run("retrieve", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/tutors", token)
		var tutors []tutor.Tutor
		unmarshall(t, rec, &tutors)
		require.NotEmpty(t, tutors)

		app.run(t, []httpTest{{path: "/v1/tutors/" + tutors[0].ID, token: token, wantData: marshallObj(t, tutors[0])}})
	})
}

func Test_tutorApi_profile(t *testing.T) {
	app := setup(t)
	sarah := testutil.CreateUser(t, app.usrRepo, "Dr. Sarah Wilson", "sarah.wilson@tutor.com", "", user.RoleTutor, true)
	newbie := testutil.CreateUser(t, app.usrRepo, "Tom Brown", "tom@tutor.com", "", user.RoleTutor, true)
	student := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	newbieToken := app.token(t, newbie)

	app.run(t, []httpTest{
		{
			name: "tutors only", path: "/v1/tutors/profile", token: app.token(t, student),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "no profile yet", path: "/v1/tutors/profile", token: newbieToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "tutor not found"}),
		},
		{
			name: "invalid profile", method: http.MethodPut, path: "/v1/tutors/profile", token: newbieToken,
			body: marshallObj(t, tutor.Profile{Qualification: "BSc", Subjects: " "}), wantCode: http.StatusBadRequest,
		},
	})

	t.Run("seeded profile", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/tutors/profile", app.token(t, sarah))
		require.Equal(t, http.StatusOK, rec.Code)

		var prof tutor.Tutor
		unmarshall(t, rec, &prof)
		assert.Equal(t, "PhD Mathematics", prof.Qualification)
		assert.Equal(t, 4.8, prof.Rating)
	})

	t.Run("create profile", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/v1/tutors/profile", newbieToken, marshallObj(t, tutor.Profile{
			Qualification: " BSc Biology ", Subjects: "Biology", Rate: 40, Availability: "Weekends",
		}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var prof tutor.Tutor
		unmarshall(t, rec, &prof)
		assert.NotEmpty(t, prof.ID)
		assert.Equal(t, newbie.ID, prof.UserID)
		assert.Equal(t, "Tom Brown", prof.Name)
		assert.Equal(t, "BSc Biology", prof.Qualification)
		assert.Equal(t, tutor.DefaultRating, prof.Rating)

		assert.Len(t, tutorNames(t, app, "/v1/tutors", newbieToken), 4)
		assert.Equal(t, []string{"Tom Brown"}, tutorNames(t, app, "/v1/tutors?subject=biology", newbieToken))
	})
}

func Test_tutorApi_bookings(t *testing.T) {
	app := setup(t)
	sarah := testutil.CreateUser(t, app.usrRepo, "Dr. Sarah Wilson", "sarah.wilson@tutor.com", "", user.RoleTutor, true)
	emily := testutil.CreateUser(t, app.usrRepo, "Ms. Emily Davis", "emily.davis@tutor.com", "", user.RoleTutor, true)
	student := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	parent := testutil.CreateUser(t, app.usrRepo, "Mrs. Johnson", "parent@test.cd", "", user.RoleParent, true)
	teacher := testutil.CreateUser(t, app.usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	studentToken := app.token(t, student)
	sarahToken := app.token(t, sarah)

	app.run(t, []httpTest{
		{
			name: "students & parents only", method: http.MethodPost, path: "/v1/tutors/bookings", token: app.token(t, teacher),
			body:     marshallObj(t, tutor.NewBooking{Subject: "Physics"}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "tutor or subject required", method: http.MethodPost, path: "/v1/tutors/bookings", token: studentToken,
			body: marshallObj(t, tutor.NewBooking{Message: "help"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown tutor", method: http.MethodPost, path: "/v1/tutors/bookings", token: studentToken,
			body:     marshallObj(t, tutor.NewBooking{TutorID: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"tutor_id": "tutor not found"}),
		},
		{
			name: "no tutor for subject", method: http.MethodPost, path: "/v1/tutors/bookings", token: studentToken,
			body:     marshallObj(t, tutor.NewBooking{Subject: "Art"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"subject": "No tutors available for Art at the moment."}),
		},
		{
			name: "parent without children", method: http.MethodPost, path: "/v1/tutors/bookings", token: app.token(t, parent),
			body:     marshallObj(t, tutor.NewBooking{Subject: "Physics"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"student_name": "this field is required"}),
		},
	})

	app.mailer.Reset()
	rec := app.do(http.MethodPost, "/v1/tutors/bookings", studentToken, marshallObj(t, tutor.NewBooking{
		Subject: "Physics", Message: " Help with optics ",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var booking tutor.Booking
	unmarshall(t, rec, &booking)
	assert.Equal(t, "Dr. Sarah Wilson", booking.TutorName)
	assert.Equal(t, "Physics", booking.Subjects)
	assert.Equal(t, "Alice Johnson", booking.StudentName)
	assert.Equal(t, "Help with optics", booking.Message)
	assert.Equal(t, tutor.StatusPending, booking.Status)
	require.Len(t, app.mailer.Sent(), 1)
	assert.Equal(t, "sarah.wilson@tutor.com", app.mailer.Sent()[0].To[0].Address)

	t.Run("listed", func(t *testing.T) {
		for _, token := range []string{studentToken, sarahToken} {
			rec := app.do(http.MethodGet, "/v1/tutors/bookings", token)
			require.Equal(t, http.StatusOK, rec.Code)
			var bookings []tutor.Booking
			unmarshall(t, rec, &bookings)
			require.Len(t, bookings, 1)
			assert.Equal(t, booking.ID, bookings[0].ID)
		}

		app.run(t, []httpTest{
			{name: "other tutor", path: "/v1/tutors/bookings", token: app.token(t, emily), wantData: marshallList(t)},
			{name: "status filter", path: "/v1/tutors/bookings?status=accepted", token: sarahToken, wantData: marshallList(t)},
		})
	})

	respondPath := "/v1/tutors/bookings/" + booking.ID + "/response"
	reschedulePath := "/v1/tutors/bookings/" + booking.ID + "/reschedule"
	app.run(t, []httpTest{
		{
			name: "not their booking", method: http.MethodPost, path: respondPath, token: app.token(t, emily),
			body:     marshallObj(t, tutor.Response{Action: tutor.StatusAccepted}),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "booking not found"}),
		},
		{
			name: "invalid action", method: http.MethodPost, path: respondPath, token: sarahToken,
			body: marshallObj(t, tutor.Response{Action: "lol"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "pending cannot complete", method: http.MethodPost, path: respondPath, token: sarahToken,
			body:     marshallObj(t, tutor.Response{Action: tutor.StatusCompleted}),
			wantCode: http.StatusConflict, wantData: marshallObj(t, httpErr{Error: "booking cannot move to this status"}),
		},
		{
			name: "invalid reschedule date", method: http.MethodPost, path: reschedulePath, token: sarahToken,
			body: marshallObj(t, tutor.Reschedule{Date: "25/10/2026", Time: "10:00"}), wantCode: http.StatusBadRequest,
		},
	})

	t.Run("accept then reschedule", func(t *testing.T) {
		app.mailer.Reset()
		rec := app.do(http.MethodPost, respondPath, sarahToken, marshallObj(t, tutor.Response{Action: tutor.StatusAccepted}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var b tutor.Booking
		unmarshall(t, rec, &b)
		assert.Equal(t, tutor.StatusAccepted, b.Status)
		assert.False(t, b.RespondedAt.IsZero())
		require.Len(t, app.mailer.Sent(), 1)
		assert.Equal(t, "alice@test.cd", app.mailer.Sent()[0].To[0].Address)

		rec = app.do(http.MethodPost, reschedulePath, sarahToken, marshallObj(t, tutor.Reschedule{Date: "2026-10-25", Time: " 10:00 "}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &b)
		assert.Equal(t, tutor.StatusRescheduled, b.Status)
		assert.Equal(t, "2026-10-25", b.RescheduledDate)
		assert.Equal(t, "10:00", b.RescheduledTime)
	})
}

func Test_tutorApi_parentBooking(t *testing.T) {
	app := setup(t)
	alice := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	parent := testutil.CreateUser(t, app.usrRepo, "Mrs. Johnson", "parent@test.cd", "", user.RoleParent, true)
	parent.Children = []string{alice.ID}
	parent = testutil.UpdateUser(t, app.usrRepo, parent)

	rec := app.do(http.MethodPost, "/v1/tutors/bookings", app.token(t, parent), marshallObj(t, tutor.NewBooking{Subject: "english"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var b tutor.Booking
	unmarshall(t, rec, &b)
	assert.Equal(t, "Ms. Emily Davis", b.TutorName)
	assert.Equal(t, "Alice Johnson", b.StudentName)
	assert.Equal(t, "Mrs. Johnson", b.ParentName)
	assert.Equal(t, "parent@test.cd", b.ParentEmail)
	assert.Equal(t, user.RoleParent, b.RequesterRole)
}
