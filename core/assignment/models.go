package assignment

import (
	"time"

	"github.com/trezcool/scola/core"
)

const DefaultPoints = 100

// Submission statuses
const (
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

// Student view statuses
const (
	ViewPending   = "Pending"
	ViewSubmitted = "Submitted"
	ViewOverdue   = "Overdue"
)

type Assignment struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Subject     string       `json:"subject"`
	Grade       string       `json:"grade,omitempty"`
	DueDate     string       `json:"due_date"`
	Points      int          `json:"points"`
	CreatedBy   string       `json:"created_by"`
	CreatedByID string       `json:"created_by_id"`
	CreatedAt   time.Time    `json:"created_at"`
	Submissions []Submission `json:"submissions"`
}

// Submission finds the submission of a student.
func (a Assignment) Submission(studentID string) (Submission, bool) {
	for _, s := range a.Submissions {
		if s.StudentID == studentID {
			return s, true
		}
	}
	return Submission{}, false
}

// IsOverdue reports whether the due date is before today.
func (a Assignment) IsOverdue(today string) bool {
	return a.DueDate < today
}

type Submission struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	Grade       *float64  `json:"grade"`
	Feedback    string    `json:"feedback"`
	GradedAt    time.Time `json:"graded_at,omitempty"`
}

// StudentAssignment is an Assignment as seen by a student.
type StudentAssignment struct {
	Assignment
	Status     string      `json:"status"`
	Submission *Submission `json:"submission"`
}

type NewAssignment struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	Subject     string `json:"subject" validate:"required,notblank"`
	Grade       string `json:"grade" validate:"omitempty,grade"`
	DueDate     string `json:"due_date" validate:"required,isodate"`
	Points      int    `json:"points" validate:"omitempty,min=1,max=1000"`
}

func (na *NewAssignment) Clean() {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Subject = core.CleanString(na.Subject)
	if na.Points == 0 {
		na.Points = DefaultPoints
	}
}

type NewSubmission struct {
	Content string `json:"content" validate:"required,notblank"`
}

type GradeSubmission struct {
	StudentID string   `json:"student_id" validate:"required"`
	Grade     *float64 `json:"grade" validate:"required,min=0,max=100"`
	Feedback  string   `json:"feedback"`
}
