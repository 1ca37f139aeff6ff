package tutor

import (
	"strings"
	"time"

	"github.com/trezcool/scola/core"
)

const DefaultRating = 4.5

// Booking statuses
const (
	StatusPending     = "pending"
	StatusAccepted    = "accepted"
	StatusDeclined    = "declined"
	StatusCompleted   = "completed"
	StatusRescheduled = "rescheduled"
)

// transitions lists the statuses a booking may move to from a given status.
var transitions = map[string][]string{
	StatusPending:     {StatusAccepted, StatusDeclined, StatusRescheduled},
	StatusRescheduled: {StatusAccepted, StatusDeclined, StatusRescheduled},
	StatusAccepted:    {StatusCompleted, StatusRescheduled},
}

// CanTransition reports whether a booking in status `from` may move to `to`.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Tutor struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id,omitempty"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Qualification string    `json:"qualification"`
	Subjects      string    `json:"subjects"` // comma separated
	Rate          float64   `json:"rate"`     // per hour
	Availability  string    `json:"availability"`
	Bio           string    `json:"bio"`
	Rating        float64   `json:"rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SubjectList splits Tutor.Subjects.
func (t Tutor) SubjectList() []string {
	parts := strings.Split(t.Subjects, ",")
	subjects := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			subjects = append(subjects, p)
		}
	}
	return subjects
}

// Teaches reports whether any of the tutor's subjects contains subject (case-insensitive).
func (t Tutor) Teaches(subject string) bool {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return false
	}
	for _, s := range t.SubjectList() {
		if strings.Contains(strings.ToLower(s), subject) {
			return true
		}
	}
	return false
}

type Booking struct {
	ID              string    `json:"id"`
	TutorID         string    `json:"tutor_id"`
	TutorName       string    `json:"tutor_name"`
	TutorEmail      string    `json:"tutor_email"`
	RequesterID     string    `json:"requester_id"`
	RequesterRole   string    `json:"requester_role"`
	StudentName     string    `json:"student_name"`
	StudentEmail    string    `json:"student_email,omitempty"`
	ParentName      string    `json:"parent_name,omitempty"`
	ParentEmail     string    `json:"parent_email,omitempty"`
	Subjects        string    `json:"subjects"`
	Rate            float64   `json:"rate"`
	Message         string    `json:"message,omitempty"`
	Status          string    `json:"status"`
	RequestedAt     time.Time `json:"requested_at"`
	RespondedAt     time.Time `json:"responded_at,omitempty"`
	RescheduledDate string    `json:"rescheduled_date,omitempty"`
	RescheduledTime string    `json:"rescheduled_time,omitempty"`
}

// RequesterName is the parent's name for parent bookings, else the student's.
func (b Booking) RequesterName() string {
	if b.ParentName != "" {
		return b.ParentName
	}
	return b.StudentName
}

// RequesterEmail is the parent's email for parent bookings, else the student's.
func (b Booking) RequesterEmail() string {
	if b.ParentEmail != "" {
		return b.ParentEmail
	}
	return b.StudentEmail
}

// Profile contains the information a tutor may set on their own profile.
type Profile struct {
	Qualification string  `json:"qualification" validate:"required"`
	Subjects      string  `json:"subjects" validate:"required,notblank"`
	Rate          float64 `json:"rate" validate:"required,gt=0"`
	Availability  string  `json:"availability"`
	Bio           string  `json:"bio"`
}

func (p *Profile) Clean() {
	p.Qualification = core.CleanString(p.Qualification)
	p.Subjects = core.CleanString(p.Subjects)
	p.Availability = core.CleanString(p.Availability)
	p.Bio = core.CleanString(p.Bio)
}

// NewBooking is a session request. Either TutorID or Subject must be set:
// without a tutor, the first tutor teaching Subject is picked.
type NewBooking struct {
	TutorID     string `json:"tutor_id" validate:"required_without=Subject"`
	Subject     string `json:"subject" validate:"required_without=TutorID"`
	Message     string `json:"message"`
	StudentName string `json:"student_name"` // parents only; defaults to their first child
}

func (nb *NewBooking) Clean() {
	nb.TutorID = core.CleanString(nb.TutorID)
	nb.Subject = core.CleanString(nb.Subject)
	nb.Message = core.CleanString(nb.Message)
	nb.StudentName = core.CleanString(nb.StudentName)
}

type Response struct {
	Action string `json:"action" validate:"required,oneof=accepted declined completed"`
}

type Reschedule struct {
	Date string `json:"date" validate:"required,isodate"`
	Time string `json:"time" validate:"required,notblank"`
}

type QueryFilter struct {
	Search  string `query:"search"`
	Subject string `query:"subject"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
	qf.Subject = core.CleanString(qf.Subject, true /* lower */)
}

// Match does a case-insensitive substring match of Search on the name and Subject on the subjects.
func (qf QueryFilter) Match(t Tutor) bool {
	if qf.Search != "" && !strings.Contains(strings.ToLower(t.Name), qf.Search) {
		return false
	}
	if qf.Subject != "" && !strings.Contains(strings.ToLower(t.Subjects), qf.Subject) {
		return false
	}
	return true
}

type BookingFilter struct {
	TutorEmail  string
	RequesterID string
	Status      string `query:"status"`
}
