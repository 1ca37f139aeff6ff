package tutor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/tutor"
	"github.com/trezcool/scola/core/user"
	emailsvc "github.com/trezcool/scola/services/email"
	"github.com/trezcool/scola/storage/kvrepos"
	"github.com/trezcool/scola/tests"
)

type fixture struct {
	svc     *tutor.Service
	usrRepo user.Repository
	mailer  *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig()
	validate, _ := testutil.NewValidator()
	store := testutil.NewStore(t)

	usrRepo := kvrepos.NewUserRepository(store)
	tutorRepo := kvrepos.NewTutorRepository(store)
	_, err := tutor.SeedDemoData(context.Background(), tutorRepo)
	require.NoError(t, err)

	mailer := testutil.NewMailer(conf)
	return fixture{
		svc:     tutor.NewService(tutorRepo, user.NewService(usrRepo, validate), mailer, validate),
		usrRepo: usrRepo,
		mailer:  mailer,
	}
}

func TestService_Query(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter tutor.QueryFilter
		want   []string
	}{
		{name: "all, best rated first", want: []string{"Prof. Michael Chen", "Dr. Sarah Wilson", "Ms. Emily Davis"}},
		{name: "search", filter: tutor.QueryFilter{Search: " SARAH "}, want: []string{"Dr. Sarah Wilson"}},
		{name: "subject", filter: tutor.QueryFilter{Subject: "science"}, want: []string{"Prof. Michael Chen"}},
		{name: "no match", filter: tutor.QueryFilter{Search: "sarah", Subject: "english"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tutors, err := fx.svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(tutors))
			for _, tut := range tutors {
				got = append(got, tut.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_SaveProfile(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, fx.usrRepo, "Dr. Brown", "tutor@test.cd", "", user.RoleTutor, true)

	_, err := fx.svc.Profile(ctx, usr)
	assert.True(t, core.IsNotFound(err))

	_, err = fx.svc.SaveProfile(ctx, usr, tutor.Profile{Qualification: "PhD", Subjects: "  ", Rate: 10})
	assert.Error(t, err)

	created, err := fx.svc.SaveProfile(ctx, usr, tutor.Profile{Qualification: "PhD Biology", Subjects: "Biology, Science", Rate: 40})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, usr.ID, created.UserID)
	assert.Equal(t, tutor.DefaultRating, created.Rating)

	updated, err := fx.svc.SaveProfile(ctx, usr, tutor.Profile{Qualification: "PhD Biology", Subjects: "Biology", Rate: 45})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 45.0, updated.Rate)

	tutors, err := fx.svc.Query(ctx, tutor.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, tutors, 4)
}

func TestService_RequestBooking(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	student := testutil.CreateStudent(t, fx.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	parent := testutil.CreateUser(t, fx.usrRepo, "Mrs. Johnson", "parent@test.cd", "", user.RoleParent, true)
	parent.Children = []string{student.ID}
	parent = testutil.UpdateUser(t, fx.usrRepo, parent)
	lonely := testutil.CreateUser(t, fx.usrRepo, "No Kids", "nokids@test.cd", "", user.RoleParent, true)
	teacher := testutil.CreateUser(t, fx.usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)

	t.Run("by subject", func(t *testing.T) {
		fx.mailer.Reset()
		b, err := fx.svc.RequestBooking(ctx, student, tutor.NewBooking{Subject: "Physics", Message: "Help!"})
		require.NoError(t, err)
		assert.Equal(t, "Dr. Sarah Wilson", b.TutorName)
		assert.Equal(t, "Physics", b.Subjects)
		assert.Equal(t, tutor.StatusPending, b.Status)
		assert.Equal(t, "Alice Johnson", b.StudentName)
		assert.Equal(t, "alice@test.cd", b.StudentEmail)

		sent := fx.mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "sarah.wilson@tutor.com", sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "Alice Johnson has requested a tutoring session for Physics.")
	})

	t.Run("parent defaults to first child", func(t *testing.T) {
		tutors, err := fx.svc.Query(ctx, tutor.QueryFilter{Search: "emily"})
		require.NoError(t, err)
		b, err := fx.svc.RequestBooking(ctx, parent, tutor.NewBooking{TutorID: tutors[0].ID})
		require.NoError(t, err)
		assert.Equal(t, "Alice Johnson", b.StudentName)
		assert.Equal(t, "Mrs. Johnson", b.ParentName)
		assert.Equal(t, "English, Literature", b.Subjects)
	})

	t.Run("parent without children", func(t *testing.T) {
		_, err := fx.svc.RequestBooking(ctx, lonely, tutor.NewBooking{Subject: "English"})
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "student_name", vErr.Fields[0].Field)
	})

	t.Run("no tutor for subject", func(t *testing.T) {
		_, err := fx.svc.RequestBooking(ctx, student, tutor.NewBooking{Subject: "Geography"})
		assert.EqualError(t, err, "No tutors available for Geography at the moment.")
	})

	t.Run("unknown tutor", func(t *testing.T) {
		_, err := fx.svc.RequestBooking(ctx, student, tutor.NewBooking{TutorID: "lol"})
		assert.EqualError(t, err, "tutor not found")
	})

	t.Run("tutor or subject required", func(t *testing.T) {
		_, err := fx.svc.RequestBooking(ctx, student, tutor.NewBooking{})
		assert.Error(t, err)
	})

	t.Run("teachers cannot book", func(t *testing.T) {
		_, err := fx.svc.RequestBooking(ctx, teacher, tutor.NewBooking{Subject: "English"})
		assert.Equal(t, core.ErrForbidden, err)
	})

	bookings, err := fx.svc.Bookings(ctx, student, tutor.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	pending, err := fx.svc.PendingBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestService_Respond(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	student := testutil.CreateStudent(t, fx.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	sarah := testutil.CreateUser(t, fx.usrRepo, "Dr. Sarah Wilson", "sarah.wilson@tutor.com", "", user.RoleTutor, true)
	emily := testutil.CreateUser(t, fx.usrRepo, "Ms. Emily Davis", "emily.davis@tutor.com", "", user.RoleTutor, true)

	b, err := fx.svc.RequestBooking(ctx, student, tutor.NewBooking{Subject: "Mathematics"})
	require.NoError(t, err)

	bookings, err := fx.svc.Bookings(ctx, sarah, tutor.BookingFilter{Status: tutor.StatusPending})
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	// only the addressed tutor may respond
	_, err = fx.svc.Respond(ctx, emily, b.ID, tutor.Response{Action: tutor.StatusAccepted})
	assert.Equal(t, tutor.ErrBookingNotFound, err)

	_, err = fx.svc.Respond(ctx, sarah, b.ID, tutor.Response{Action: "maybe"})
	assert.Error(t, err)

	_, err = fx.svc.Respond(ctx, sarah, b.ID, tutor.Response{Action: tutor.StatusCompleted})
	assert.Equal(t, tutor.ErrInvalidTransition, err)

	fx.mailer.Reset()
	b, err = fx.svc.Respond(ctx, sarah, b.ID, tutor.Response{Action: tutor.StatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, tutor.StatusAccepted, b.Status)
	assert.False(t, b.RespondedAt.IsZero())
	sent := fx.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@test.cd", sent[0].To[0].Address)

	_, err = fx.svc.Reschedule(ctx, sarah, b.ID, tutor.Reschedule{Date: "next week", Time: "3pm"})
	assert.Error(t, err)

	b, err = fx.svc.Reschedule(ctx, sarah, b.ID, tutor.Reschedule{Date: "2026-11-02", Time: " 4:00 PM "})
	require.NoError(t, err)
	assert.Equal(t, tutor.StatusRescheduled, b.Status)
	assert.Equal(t, "2026-11-02", b.RescheduledDate)
	assert.Equal(t, "4:00 PM", b.RescheduledTime)

	b, err = fx.svc.Respond(ctx, sarah, b.ID, tutor.Response{Action: tutor.StatusDeclined})
	require.NoError(t, err)
	_, err = fx.svc.Reschedule(ctx, sarah, b.ID, tutor.Reschedule{Date: "2026-11-03", Time: "4:00 PM"})
	assert.Equal(t, tutor.ErrInvalidTransition, err)

	_, err = fx.svc.Respond(ctx, sarah, "lol", tutor.Response{Action: tutor.StatusAccepted})
	assert.True(t, core.IsNotFound(err))
}
