package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scola/core/assignment"
	"github.com/trezcool/scola/core/user"
	"github.com/trezcool/scola/storage/kvrepos"
	"github.com/trezcool/scola/tests"
)

func setup(t *testing.T) (*assignment.Service, user.Repository) {
	validate, _ := testutil.NewValidator()
	store := testutil.NewStore(t)
	return assignment.NewService(kvrepos.NewAssignmentRepository(store), validate), kvrepos.NewUserRepository(store)
}

func fPtr(f float64) *float64 { return &f }

func TestService_Create(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)

	tests := []struct {
		name    string
		na      assignment.NewAssignment
		wantErr bool
	}{
		{name: "title required", na: assignment.NewAssignment{Title: "  ", Subject: "Mathematics", DueDate: "2026-10-20"}, wantErr: true},
		{name: "subject required", na: assignment.NewAssignment{Title: "Algebra", DueDate: "2026-10-20"}, wantErr: true},
		{name: "invalid due date", na: assignment.NewAssignment{Title: "Algebra", Subject: "Mathematics", DueDate: "20/10/2026"}, wantErr: true},
		{name: "invalid grade", na: assignment.NewAssignment{Title: "Algebra", Subject: "Mathematics", DueDate: "2026-10-20", Grade: "Grade 13"}, wantErr: true},
		{name: "too many points", na: assignment.NewAssignment{Title: "Algebra", Subject: "Mathematics", DueDate: "2026-10-20", Points: 5000}, wantErr: true},
		{name: "created", na: assignment.NewAssignment{Title: " Algebra ", Subject: "Mathematics", DueDate: "2026-10-20", Grade: "Grade 10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := svc.Create(ctx, teacher, tt.na)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, a.ID)
			assert.Equal(t, "Algebra", a.Title)
			assert.Equal(t, assignment.DefaultPoints, a.Points)
			assert.Equal(t, "Mr. Smith", a.CreatedBy)
			assert.Empty(t, a.Submissions)
		})
	}
}

func TestService_ForStudent(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()
	testutil.FreezeTime(t, time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC))

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	alice := testutil.CreateStudent(t, usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	bob := testutil.CreateStudent(t, usrRepo, "Bob Smith", "bob@test.cd", "STU002", "Grade 10")

	create := func(title, grade, due string) assignment.Assignment {
		a, err := svc.Create(ctx, teacher, assignment.NewAssignment{Title: title, Subject: "Mathematics", Grade: grade, DueDate: due})
		require.NoError(t, err)
		return a
	}
	later := create("Later", "Grade 10", "2026-10-25")
	overdue := create("Overdue", "", "2026-10-17")
	create("Other grade", "Grade 11", "2026-10-19")
	today := create("Today", "Grade 10", "2026-10-18")

	_, err := svc.Submit(ctx, bob, later.ID, assignment.NewSubmission{Content: "Bob's work"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, alice, later.ID, assignment.NewSubmission{Content: "My work"})
	require.NoError(t, err)

	views, err := svc.ForStudent(ctx, alice)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, overdue.ID, views[0].ID)
	assert.Equal(t, assignment.ViewOverdue, views[0].Status)
	assert.Equal(t, today.ID, views[1].ID)
	assert.Equal(t, assignment.ViewPending, views[1].Status)
	assert.Equal(t, later.ID, views[2].ID)
	assert.Equal(t, assignment.ViewSubmitted, views[2].Status)
	require.NotNil(t, views[2].Submission)
	assert.Equal(t, "My work", views[2].Submission.Content)
	assert.Nil(t, views[2].Submissions)

	all, err := svc.Query(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestService_SubmitAndGrade(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	alice := testutil.CreateStudent(t, usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	a, err := svc.Create(ctx, teacher, assignment.NewAssignment{Title: "Essay", Subject: "English", DueDate: "2026-10-25"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, alice, a.ID, assignment.NewSubmission{Content: " "})
	assert.Error(t, err)

	_, err = svc.Submit(ctx, alice, "lol", assignment.NewSubmission{Content: "draft"})
	assert.Equal(t, assignment.ErrNotFound, err)

	_, err = svc.Grade(ctx, a.ID, assignment.GradeSubmission{StudentID: alice.ID, Grade: fPtr(80)})
	assert.Equal(t, assignment.ErrSubmissionNotFound, err)

	sub, err := svc.Submit(ctx, alice, a.ID, assignment.NewSubmission{Content: "draft"})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusSubmitted, sub.Status)

	_, err = svc.Grade(ctx, a.ID, assignment.GradeSubmission{StudentID: alice.ID, Grade: fPtr(101)})
	assert.Error(t, err)
	_, err = svc.Grade(ctx, a.ID, assignment.GradeSubmission{StudentID: alice.ID})
	assert.Error(t, err)

	graded, err := svc.Grade(ctx, a.ID, assignment.GradeSubmission{StudentID: alice.ID, Grade: fPtr(0), Feedback: " Try again "})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusGraded, graded.Status)
	assert.Equal(t, 0.0, *graded.Grade)
	assert.Equal(t, "Try again", graded.Feedback)

	// resubmitting clears the grade
	sub, err = svc.Submit(ctx, alice, a.ID, assignment.NewSubmission{Content: "final"})
	require.NoError(t, err)
	assert.Nil(t, sub.Grade)

	all, err := svc.Query(ctx)
	require.NoError(t, err)
	require.Len(t, all[0].Submissions, 1)
	assert.Equal(t, "final", all[0].Submissions[0].Content)
	assert.Equal(t, assignment.StatusSubmitted, all[0].Submissions[0].Status)
}

func TestAssignment_IsOverdue(t *testing.T) {
	a := assignment.Assignment{DueDate: "2026-10-18"}
	assert.False(t, a.IsOverdue("2026-10-18"))
	assert.True(t, a.IsOverdue("2026-10-19"))
	assert.False(t, a.IsOverdue("2026-10-01"))
}
