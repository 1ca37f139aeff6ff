package assignment

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

var (
	ErrNotFound           = errors.WithMessage(core.ErrNotFound, "assignment")
	ErrSubmissionNotFound = errors.WithMessage(core.ErrNotFound, "submission")
)

type (
	Repository interface {
		QueryAssignments(ctx context.Context) ([]Assignment, error)
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		UpdateAssignment(ctx context.Context, id string, fn func(*Assignment) error) (Assignment, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Query returns every assignment, soonest due first.
func (svc *Service) Query(ctx context.Context) ([]Assignment, error) {
	assignments, err := svc.repo.QueryAssignments(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(assignments, func(i, j int) bool { return assignments[i].DueDate < assignments[j].DueDate })
	return assignments, nil
}

// ForStudent returns the assignments of the student's grade (or without a grade) with their status:
// Submitted, Overdue (due date passed without submission) or Pending.
func (svc *Service) ForStudent(ctx context.Context, student user.User) ([]StudentAssignment, error) {
	assignments, err := svc.Query(ctx)
	if err != nil {
		return nil, err
	}
	today := core.Today()
	views := make([]StudentAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.Grade != "" && student.Grade != "" && a.Grade != student.Grade {
			continue
		}
		view := StudentAssignment{Assignment: a, Status: ViewPending}
		view.Submissions = nil // other students' work
		if sub, ok := a.Submission(student.ID); ok {
			view.Status = ViewSubmitted
			view.Submission = &sub
		} else if a.IsOverdue(today) {
			view.Status = ViewOverdue
		}
		views = append(views, view)
	}
	return views, nil
}

func (svc *Service) Create(ctx context.Context, teacher user.User, na NewAssignment) (Assignment, error) {
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return Assignment{}, err
	}
	return svc.repo.CreateAssignment(ctx, Assignment{
		Title:       na.Title,
		Description: na.Description,
		Subject:     na.Subject,
		Grade:       na.Grade,
		DueDate:     na.DueDate,
		Points:      na.Points,
		CreatedBy:   teacher.Name,
		CreatedByID: teacher.ID,
		CreatedAt:   core.Now(),
		Submissions: make([]Submission, 0),
	})
}

// Submit creates or replaces the student's submission. A resubmission clears the grade.
func (svc *Service) Submit(ctx context.Context, student user.User, id string, ns NewSubmission) (Submission, error) {
	ns.Content = core.CleanString(ns.Content)
	if err := svc.validate.Struct(ns); err != nil {
		return Submission{}, err
	}

	sub := Submission{
		StudentID:   student.ID,
		StudentName: student.Name,
		Content:     ns.Content,
		Status:      StatusSubmitted,
		SubmittedAt: core.Now(),
	}
	_, err := svc.repo.UpdateAssignment(ctx, id, func(a *Assignment) error {
		for i, s := range a.Submissions {
			if s.StudentID == student.ID {
				a.Submissions[i] = sub
				return nil
			}
		}
		a.Submissions = append(a.Submissions, sub)
		return nil
	})
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Grade grades an existing submission.
func (svc *Service) Grade(ctx context.Context, id string, gs GradeSubmission) (Submission, error) {
	gs.Feedback = core.CleanString(gs.Feedback)
	if err := svc.validate.Struct(gs); err != nil {
		return Submission{}, err
	}

	var graded Submission
	_, err := svc.repo.UpdateAssignment(ctx, id, func(a *Assignment) error {
		for i, s := range a.Submissions {
			if s.StudentID == gs.StudentID {
				s.Grade = gs.Grade
				s.Feedback = gs.Feedback
				s.Status = StatusGraded
				s.GradedAt = core.Now()
				a.Submissions[i] = s
				graded = s
				return nil
			}
		}
		return ErrSubmissionNotFound
	})
	if err != nil {
		return Submission{}, err
	}
	return graded, nil
}
