package tutor

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

// MaxRecommendations is the number of tutors recommended to a struggling student.
const MaxRecommendations = 3

var (
	// errors
	ErrNotFound          = errors.WithMessage(core.ErrNotFound, "tutor")
	ErrBookingNotFound   = errors.WithMessage(core.ErrNotFound, "booking")
	ErrInvalidTransition = errors.WithMessage(core.ErrConflict, "booking cannot move to this status")
)

type (
	Repository interface {
		QueryTutors(ctx context.Context) ([]Tutor, error)
		GetTutor(ctx context.Context, filter GetFilter) (Tutor, error)
		// SaveTutor creates the tutor if its ID is empty, else replaces it.
		SaveTutor(ctx context.Context, t Tutor) (Tutor, error)
		QueryBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
		CreateBooking(ctx context.Context, b Booking) (Booking, error)
		UpdateBooking(ctx context.Context, id string, fn func(*Booking) error) (Booking, error)
	}

	// GetFilter selects a single Tutor. The first non-empty field is used.
	GetFilter struct {
		ID    string
		Email string
	}

	// ChildrenFinder finds the students linked to a parent.
	ChildrenFinder interface {
		Children(ctx context.Context, parent user.User) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		users    ChildrenFinder
		mailSvc  core.EmailService
		validate *validator.Validate
	}
)

func NewService(repo Repository, users ChildrenFinder, mailSvc core.EmailService, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, mailSvc: mailSvc, validate: validate}
}

// Query returns the tutors matching filter, best rated first.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Tutor, error) {
	filter.Clean()
	tutors, err := svc.repo.QueryTutors(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Tutor, 0, len(tutors))
	for _, t := range tutors {
		if filter.Match(t) {
			matched = append(matched, t)
		}
	}
	sortByRating(matched)
	return matched, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Tutor, error) {
	return svc.repo.GetTutor(ctx, GetFilter{ID: id})
}

// Profile returns the tutor profile of usr.
func (svc *Service) Profile(ctx context.Context, usr user.User) (Tutor, error) {
	return svc.repo.GetTutor(ctx, GetFilter{Email: usr.Email})
}

// SaveProfile creates or updates the tutor profile of usr, matched by email.
func (svc *Service) SaveProfile(ctx context.Context, usr user.User, p Profile) (Tutor, error) {
	p.Clean()
	if err := svc.validate.Struct(p); err != nil {
		return Tutor{}, err
	}

	now := core.Now()
	t, err := svc.Profile(ctx, usr)
	if err != nil {
		if !core.IsNotFound(err) {
			return Tutor{}, errors.Wrap(err, "finding profile")
		}
		t = Tutor{Email: usr.Email, Rating: DefaultRating, CreatedAt: now}
	}
	t.UserID = usr.ID
	t.Name = usr.Name
	t.Qualification = p.Qualification
	t.Subjects = p.Subjects
	t.Rate = p.Rate
	t.Availability = p.Availability
	t.Bio = p.Bio
	t.UpdatedAt = now
	return svc.repo.SaveTutor(ctx, t)
}

// Recommend returns up to limit tutors teaching one of subjects, best rated first.
func (svc *Service) Recommend(ctx context.Context, subjects []string, limit int) ([]Tutor, error) {
	tutors, err := svc.repo.QueryTutors(ctx)
	if err != nil {
		return nil, err
	}
	return Recommend(tutors, subjects, limit), nil
}

// Bookings returns the bookings addressed to usr if they are a tutor, else the ones they requested.
func (svc *Service) Bookings(ctx context.Context, usr user.User, filter BookingFilter) ([]Booking, error) {
	if usr.IsTutor() {
		filter.TutorEmail = usr.Email
	} else {
		filter.RequesterID = usr.ID
	}
	return svc.repo.QueryBookings(ctx, filter)
}

// PendingBookings returns every pending booking.
func (svc *Service) PendingBookings(ctx context.Context) ([]Booking, error) {
	return svc.repo.QueryBookings(ctx, BookingFilter{Status: StatusPending})
}

func (svc *Service) findTutor(ctx context.Context, nb NewBooking) (Tutor, error) {
	if nb.TutorID != "" {
		t, err := svc.GetByID(ctx, nb.TutorID)
		if err != nil && core.IsNotFound(err) {
			return Tutor{}, core.NewFieldError("tutor_id", "tutor not found")
		}
		return t, err
	}
	tutors, err := svc.repo.QueryTutors(ctx)
	if err != nil {
		return Tutor{}, err
	}
	for _, t := range tutors {
		if t.Teaches(nb.Subject) {
			return t, nil
		}
	}
	return Tutor{}, core.NewFieldError("subject", fmt.Sprintf("No tutors available for %s at the moment.", nb.Subject))
}

// RequestBooking books a tutoring session for a student, or a parent on behalf of their child.
func (svc *Service) RequestBooking(ctx context.Context, requester user.User, nb NewBooking) (Booking, error) {
	nb.Clean()
	if err := svc.validate.Struct(nb); err != nil {
		return Booking{}, err
	}
	if !(requester.IsStudent() || requester.IsParent()) {
		return Booking{}, core.ErrForbidden
	}

	t, err := svc.findTutor(ctx, nb)
	if err != nil {
		return Booking{}, err
	}

	subjects := t.Subjects
	if nb.Subject != "" {
		subjects = nb.Subject
	}
	b := Booking{
		TutorID:       t.ID,
		TutorName:     t.Name,
		TutorEmail:    t.Email,
		RequesterID:   requester.ID,
		RequesterRole: requester.Role,
		Subjects:      subjects,
		Rate:          t.Rate,
		Message:       nb.Message,
		Status:        StatusPending,
		RequestedAt:   core.Now(),
	}
	if requester.IsParent() {
		studentName, err := svc.childName(ctx, requester, nb.StudentName)
		if err != nil {
			return Booking{}, err
		}
		b.StudentName = studentName
		b.ParentName = requester.Name
		b.ParentEmail = requester.Email
	} else {
		b.StudentName = requester.Name
		b.StudentEmail = requester.Email
	}

	b, err = svc.repo.CreateBooking(ctx, b)
	if err != nil {
		return Booking{}, errors.Wrap(err, "creating booking")
	}
	svc.notify(b, b.TutorName, b.TutorEmail, "New tutoring request", "booking_request")
	return b, nil
}

func (svc *Service) childName(ctx context.Context, parent user.User, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	children, err := svc.users.Children(ctx, parent)
	if err != nil {
		return "", errors.Wrap(err, "finding children")
	}
	if len(children) == 0 {
		return "", core.NewFieldError("student_name", "this field is required")
	}
	return children[0].Name, nil
}

func (svc *Service) update(ctx context.Context, tutorUsr user.User, id string, fn func(*Booking) error) (Booking, error) {
	b, err := svc.repo.UpdateBooking(ctx, id, func(b *Booking) error {
		if b.TutorEmail != tutorUsr.Email {
			return ErrBookingNotFound
		}
		if err := fn(b); err != nil {
			return err
		}
		b.RespondedAt = core.Now()
		return nil
	})
	if err != nil {
		return Booking{}, err
	}
	svc.notify(b, b.RequesterName(), b.RequesterEmail(), "Tutoring request "+b.Status, "booking_response")
	return b, nil
}

// Respond accepts, declines or completes a booking addressed to tutorUsr.
func (svc *Service) Respond(ctx context.Context, tutorUsr user.User, id string, r Response) (Booking, error) {
	if err := svc.validate.Struct(r); err != nil {
		return Booking{}, err
	}
	return svc.update(ctx, tutorUsr, id, func(b *Booking) error {
		if !CanTransition(b.Status, r.Action) {
			return ErrInvalidTransition
		}
		b.Status = r.Action
		return nil
	})
}

// Reschedule proposes a new date & time for a booking addressed to tutorUsr.
func (svc *Service) Reschedule(ctx context.Context, tutorUsr user.User, id string, r Reschedule) (Booking, error) {
	r.Time = core.CleanString(r.Time)
	if err := svc.validate.Struct(r); err != nil {
		return Booking{}, err
	}
	return svc.update(ctx, tutorUsr, id, func(b *Booking) error {
		if !CanTransition(b.Status, StatusRescheduled) {
			return ErrInvalidTransition
		}
		b.Status = StatusRescheduled
		b.RescheduledDate = r.Date
		b.RescheduledTime = r.Time
		return nil
	})
}

func (svc *Service) notify(b Booking, toName, toEmail, subject, tmpl string) {
	if toEmail == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: toName, Address: toEmail}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: b,
	})
}
