// Package meeting implements the parent/teacher meetings scheduled by teachers and accepted by parents.
package meeting

import (
	"context"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

const (
	StatusScheduled = "scheduled"
	StatusAccepted  = "accepted"

	DefaultTime  = "3:00 PM"
	DefaultTopic = "Student Performance"
	defaultDelay = 7 * 24 * time.Hour
)

var (
	// errors
	ErrNotFound        = errors.WithMessage(core.ErrNotFound, "meeting")
	ErrNotParent       = core.NewFieldError("parent_id", "parent_id must be the ID of a parent")
	ErrAlreadyAccepted = errors.WithMessage(core.ErrConflict, "meeting is not awaiting approval")
)

type (
	Meeting struct {
		ID                  string     `json:"id"`
		StudentName         string     `json:"student_name"`
		StudentNumber       string     `json:"student_number"`
		ParentID            string     `json:"parent_id,omitempty"`
		ParentName          string     `json:"parent_name"`
		ParentEmail         string     `json:"parent_email,omitempty"`
		TeacherID           string     `json:"teacher_id"`
		TeacherName         string     `json:"teacher_name"`
		TeacherEmail        string     `json:"teacher_email"`
		Date                string     `json:"date"`
		Time                string     `json:"time"`
		Topic               string     `json:"topic"`
		Status              string     `json:"status"`
		NeedsParentApproval bool       `json:"needs_parent_approval"`
		CreatedAt           time.Time  `json:"created_at"`
		ParentApprovedAt    *time.Time `json:"parent_approved_at,omitempty"`
	}

	NewMeeting struct {
		StudentName   string `json:"student_name" validate:"required,notblank"`
		StudentNumber string `json:"student_number"`
		ParentID      string `json:"parent_id"`
		Date          string `json:"date" validate:"omitempty,isodate"`
		Time          string `json:"time"`
		Topic         string `json:"topic" validate:"max=200"`
	}

	Repository interface {
		QueryMeetings(ctx context.Context) ([]Meeting, error)
		CreateMeeting(ctx context.Context, m Meeting) (Meeting, error)
		UpdateMeeting(ctx context.Context, id string, fn func(*Meeting) error) (Meeting, error)
	}

	UserFinder interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		Children(ctx context.Context, parent user.User) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		users    UserFinder
		mailSvc  core.EmailService
		validate *validator.Validate
	}
)

func (nm *NewMeeting) Clean() {
	nm.StudentName = core.CleanString(nm.StudentName)
	nm.StudentNumber = core.CleanString(nm.StudentNumber)
	nm.ParentID = core.CleanString(nm.ParentID)
	nm.Date = core.CleanString(nm.Date)
	nm.Time = core.CleanString(nm.Time)
	nm.Topic = core.CleanString(nm.Topic)
}

// DefaultParentName is the parent name used when no parent account is linked: "<student first name> Parent".
func DefaultParentName(studentName string) string {
	first := strings.Fields(studentName)
	if len(first) == 0 {
		return "Parent"
	}
	return first[0] + " Parent"
}

func NewService(repo Repository, users UserFinder, mailSvc core.EmailService, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, mailSvc: mailSvc, validate: validate}
}

// Schedule creates a meeting request awaiting the parent's approval.
func (svc *Service) Schedule(ctx context.Context, teacher user.User, nm NewMeeting) (Meeting, error) {
	nm.Clean()
	if err := svc.validate.Struct(nm); err != nil {
		return Meeting{}, err
	}

	m := Meeting{
		StudentName:         nm.StudentName,
		StudentNumber:       nm.StudentNumber,
		ParentName:          DefaultParentName(nm.StudentName),
		TeacherID:           teacher.ID,
		TeacherName:         teacher.Name,
		TeacherEmail:        teacher.Email,
		Date:                nm.Date,
		Time:                nm.Time,
		Topic:               nm.Topic,
		Status:              StatusScheduled,
		NeedsParentApproval: true,
		CreatedAt:           core.Now(),
	}
	if m.Date == "" {
		m.Date = core.Now().Add(defaultDelay).Format(core.DateLayout)
	}
	if m.Time == "" {
		m.Time = DefaultTime
	}
	if m.Topic == "" {
		m.Topic = DefaultTopic
	}
	if nm.ParentID != "" {
		parent, err := svc.users.GetByID(ctx, nm.ParentID)
		if err != nil {
			if core.IsNotFound(err) {
				return Meeting{}, ErrNotParent
			}
			return Meeting{}, err
		}
		if !parent.IsParent() {
			return Meeting{}, ErrNotParent
		}
		m.ParentID = parent.ID
		m.ParentName = parent.Name
		m.ParentEmail = parent.Email
	}

	m, err := svc.repo.CreateMeeting(ctx, m)
	if err != nil {
		return Meeting{}, err
	}
	svc.notify(m, m.ParentName, m.ParentEmail, "Meeting request from "+m.TeacherName, "meeting_request")
	return m, nil
}

// Query returns the meetings visible to usr, soonest first: teachers see the meetings they scheduled,
// parents those about them or their children, admins every meeting.
func (svc *Service) Query(ctx context.Context, usr user.User) ([]Meeting, error) {
	all, err := svc.repo.QueryMeetings(ctx)
	if err != nil {
		return nil, err
	}

	var childNames map[string]bool
	if usr.IsParent() {
		if childNames, err = svc.childNames(ctx, usr); err != nil {
			return nil, err
		}
	}

	meetings := make([]Meeting, 0)
	for _, m := range all {
		switch {
		case usr.IsAdmin():
		case usr.IsTeacher() && m.TeacherID == usr.ID:
		case usr.IsParent() && (m.ParentID == usr.ID || (m.ParentID == "" && childNames[m.StudentName])):
		default:
			continue
		}
		meetings = append(meetings, m)
	}
	sort.SliceStable(meetings, func(i, j int) bool { return meetings[i].Date < meetings[j].Date })
	return meetings, nil
}

// PendingCount returns the number of meetings awaiting a parent's approval.
func (svc *Service) PendingCount(ctx context.Context) (int, error) {
	all, err := svc.repo.QueryMeetings(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range all {
		if m.Status == StatusScheduled {
			count++
		}
	}
	return count, nil
}

// Accept approves a scheduled meeting on behalf of the parent.
func (svc *Service) Accept(ctx context.Context, parent user.User, id string) (Meeting, error) {
	childNames, err := svc.childNames(ctx, parent)
	if err != nil {
		return Meeting{}, err
	}

	m, err := svc.repo.UpdateMeeting(ctx, id, func(m *Meeting) error {
		if m.ParentID != parent.ID && !(m.ParentID == "" && childNames[m.StudentName]) {
			return core.ErrForbidden
		}
		if m.Status != StatusScheduled {
			return ErrAlreadyAccepted
		}
		now := core.Now()
		m.Status = StatusAccepted
		m.NeedsParentApproval = false
		m.ParentApprovedAt = &now
		if m.ParentID == "" {
			m.ParentID = parent.ID
			m.ParentName = parent.Name
			m.ParentEmail = parent.Email
		}
		return nil
	})
	if err != nil {
		return Meeting{}, err
	}
	svc.notify(m, m.TeacherName, m.TeacherEmail, "Meeting accepted by "+m.ParentName, "meeting_accepted")
	return m, nil
}

func (svc *Service) childNames(ctx context.Context, parent user.User) (map[string]bool, error) {
	children, err := svc.users.Children(ctx, parent)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(children))
	for _, c := range children {
		names[c.Name] = true
	}
	return names, nil
}

func (svc *Service) notify(m Meeting, toName, toEmail, subject, tmpl string) {
	if toEmail == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: toName, Address: toEmail}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: m,
	})
}
