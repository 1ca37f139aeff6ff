// Package dashboard assembles the home view of each role from the feature services.
package dashboard

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/assignment"
	"github.com/trezcool/scola/core/meeting"
	"github.com/trezcool/scola/core/performance"
	"github.com/trezcool/scola/core/quiz"
	"github.com/trezcool/scola/core/report"
	"github.com/trezcool/scola/core/tutor"
	"github.com/trezcool/scola/core/user"
)

const (
	// RecentRecords is the number of latest records in a student summary.
	RecentRecords = 5
	// ChildRecentRecords is the number of latest records in a child summary.
	ChildRecentRecords = 10
)

type (
	StudentView struct {
		Summary     performance.Summary            `json:"summary"`
		Tutors      []tutor.Tutor                  `json:"tutors"`
		Assignments []assignment.StudentAssignment `json:"assignments"`
		QuizStats   quiz.StatsView                 `json:"quiz_stats"`
		Bookings    []tutor.Booking                `json:"bookings"`
	}

	TeacherView struct {
		GradesTaught   []string          `json:"grades_taught"`
		SubjectsTaught []string          `json:"subjects_taught"`
		Stats          performance.Stats `json:"stats"`
		Assignments    int               `json:"assignments"`
		Meetings       []meeting.Meeting `json:"meetings"`
	}

	ChildView struct {
		Child   user.User           `json:"child"`
		Summary performance.Summary `json:"summary"`
	}

	ParentView struct {
		Children []ChildView       `json:"children"`
		Meetings []meeting.Meeting `json:"meetings"`
		Reports  []report.Report   `json:"reports"`
		Bookings []tutor.Booking   `json:"bookings"`
	}

	BookingCounts struct {
		Pending   int `json:"pending"`
		Accepted  int `json:"accepted"`
		Completed int `json:"completed"`
	}

	TutorView struct {
		Profile  *tutor.Tutor    `json:"profile"`
		Counts   BookingCounts   `json:"counts"`
		Bookings []tutor.Booking `json:"bookings"`
	}

	AdminView struct {
		ActiveUsers      int `json:"active_users"`
		Tutors           int `json:"tutors"`
		PendingMeetings  int `json:"pending_meetings"`
		PendingBookings  int `json:"pending_bookings"`
		TotalStudents    int `json:"total_students"`
		TotalRecords     int `json:"total_records"`
		PublishedReports int `json:"published_reports"`
	}

	// View is the dashboard of a user: exactly one of the role views is set.
	View struct {
		Role    string       `json:"role"`
		Student *StudentView `json:"student,omitempty"`
		Teacher *TeacherView `json:"teacher,omitempty"`
		Parent  *ParentView  `json:"parent,omitempty"`
		Tutor   *TutorView   `json:"tutor,omitempty"`
		Admin   *AdminView   `json:"admin,omitempty"`
	}

	Service struct {
		users       *user.Service
		performance *performance.Service
		assignments *assignment.Service
		quizzes     *quiz.Service
		tutors      *tutor.Service
		meetings    *meeting.Service
		reports     *report.Service
	}
)

func NewService(
	users *user.Service,
	perf *performance.Service,
	assignments *assignment.Service,
	quizzes *quiz.Service,
	tutors *tutor.Service,
	meetings *meeting.Service,
	reports *report.Service,
) *Service {
	return &Service{
		users:       users,
		performance: perf,
		assignments: assignments,
		quizzes:     quizzes,
		tutors:      tutors,
		meetings:    meetings,
		reports:     reports,
	}
}

func (svc *Service) Get(ctx context.Context, usr user.User) (View, error) {
	var (
		view = View{Role: usr.Role}
		err  error
	)
	switch usr.Role {
	case user.RoleStudent:
		view.Student, err = svc.student(ctx, usr)
	case user.RoleTeacher:
		view.Teacher, err = svc.teacher(ctx, usr)
	case user.RoleParent:
		view.Parent, err = svc.parent(ctx, usr)
	case user.RoleTutor:
		view.Tutor, err = svc.tutor(ctx, usr)
	case user.RoleAdmin:
		view.Admin, err = svc.admin(ctx)
	default:
		return View{}, core.ErrForbidden
	}
	if err != nil {
		return View{}, err
	}
	return view, nil
}

func (svc *Service) student(ctx context.Context, usr user.User) (*StudentView, error) {
	sum, err := svc.performance.StudentSummary(ctx, usr, RecentRecords)
	if err != nil {
		return nil, err
	}
	tutors, err := svc.tutors.Query(ctx, tutor.QueryFilter{})
	if err != nil {
		return nil, err
	}
	assignments, err := svc.assignments.ForStudent(ctx, usr)
	if err != nil {
		return nil, err
	}
	stats, err := svc.quizzes.Stats(ctx, usr)
	if err != nil {
		return nil, err
	}
	bookings, err := svc.tutors.Bookings(ctx, usr, tutor.BookingFilter{})
	if err != nil {
		return nil, err
	}
	return &StudentView{
		Summary:     sum,
		Tutors:      tutors,
		Assignments: assignments,
		QuizStats:   stats,
		Bookings:    bookings,
	}, nil
}

func (svc *Service) teacher(ctx context.Context, usr user.User) (*TeacherView, error) {
	grade := core.AllGrades
	if len(usr.GradesTaught) == 1 {
		grade = usr.GradesTaught[0]
	}
	stats, err := svc.performance.Stats(ctx, grade)
	if err != nil {
		return nil, err
	}
	assignments, err := svc.assignments.Query(ctx)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, a := range assignments {
		if a.CreatedByID == usr.ID {
			count++
		}
	}
	meetings, err := svc.meetings.Query(ctx, usr)
	if err != nil {
		return nil, err
	}
	return &TeacherView{
		GradesTaught:   nonNil(usr.GradesTaught),
		SubjectsTaught: nonNil(usr.SubjectsTaught),
		Stats:          stats,
		Assignments:    count,
		Meetings:       meetings,
	}, nil
}

func (svc *Service) parent(ctx context.Context, usr user.User) (*ParentView, error) {
	children, err := svc.users.Children(ctx, usr)
	if err != nil {
		return nil, err
	}

	view := &ParentView{Children: make([]ChildView, 0, len(children))}
	grades := make([]string, 0, len(children))
	for _, child := range children {
		sum, err := svc.performance.StudentSummary(ctx, child, ChildRecentRecords)
		if err != nil {
			return nil, err
		}
		view.Children = append(view.Children, ChildView{Child: child, Summary: sum})
		if child.Grade != "" {
			grades = append(grades, child.Grade)
		}
	}

	if view.Meetings, err = svc.meetings.Query(ctx, usr); err != nil {
		return nil, err
	}
	view.Reports = make([]report.Report, 0)
	if len(grades) > 0 {
		if view.Reports, err = svc.reports.Query(ctx, grades...); err != nil {
			return nil, err
		}
	}
	if view.Bookings, err = svc.tutors.Bookings(ctx, usr, tutor.BookingFilter{}); err != nil {
		return nil, err
	}
	return view, nil
}

func (svc *Service) tutor(ctx context.Context, usr user.User) (*TutorView, error) {
	view := new(TutorView)
	profile, err := svc.tutors.Profile(ctx, usr)
	switch {
	case err == nil:
		view.Profile = &profile
	case !core.IsNotFound(err):
		return nil, err
	}

	if view.Bookings, err = svc.tutors.Bookings(ctx, usr, tutor.BookingFilter{}); err != nil {
		return nil, err
	}
	for _, b := range view.Bookings {
		switch b.Status {
		case tutor.StatusPending:
			view.Counts.Pending++
		case tutor.StatusAccepted:
			view.Counts.Accepted++
		case tutor.StatusCompleted:
			view.Counts.Completed++
		}
	}
	return view, nil
}

func (svc *Service) admin(ctx context.Context) (*AdminView, error) {
	active := true
	users, err := svc.users.Query(ctx, &user.QueryFilter{IsActive: &active}, nil)
	if err != nil {
		return nil, err
	}
	tutors, err := svc.tutors.Query(ctx, tutor.QueryFilter{})
	if err != nil {
		return nil, err
	}
	pendingMeetings, err := svc.meetings.PendingCount(ctx)
	if err != nil {
		return nil, err
	}
	pendingBookings, err := svc.tutors.PendingBookings(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := svc.performance.Stats(ctx, core.AllGrades)
	if err != nil {
		return nil, err
	}
	published, err := svc.reports.PublishedCount(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminView{
		ActiveUsers:      len(users),
		Tutors:           len(tutors),
		PendingMeetings:  pendingMeetings,
		PendingBookings:  len(pendingBookings),
		TotalStudents:    stats.TotalStudents,
		TotalRecords:     stats.TotalRecords,
		PublishedReports: published,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return make([]string, 0)
	}
	return s
}
