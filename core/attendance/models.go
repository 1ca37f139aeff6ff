package attendance

import "time"

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

type Record struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	StudentName   string    `json:"student_name"`
	StudentNumber string    `json:"student_number"`
	Grade         string    `json:"grade"`
	Date          string    `json:"date"`
	Status        string    `json:"status"`
	MarkedBy      string    `json:"marked_by"`
	MarkedAt      time.Time `json:"marked_at"`
}

type Mark struct {
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required,isodate"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
}

type Stats struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
	Total   int    `json:"total"` // roster size
}

// RosterEntry is a student of the roster with their status on a date, if marked.
type RosterEntry struct {
	StudentID     string `json:"student_id"`
	StudentName   string `json:"student_name"`
	StudentNumber string `json:"student_number"`
	Grade         string `json:"grade"`
	Status        string `json:"status"`
}
