package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"

	// AllGrades is the grade filter value meaning "no filter".
	AllGrades = "All Grades"
)

var (
	NowFunc = time.Now // mockable

	Grades = []string{
		"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6",
		"Grade 7", "Grade 8", "Grade 9", "Grade 10", "Grade 11", "Grade 12",
	}
	Terms = []string{"Term 1", "Term 2", "Term 3", "Term 4", "Mid-Year", "Final"}
)

// Now returns the current UTC time.
func Now() time.Time {
	return NowFunc().UTC()
}

// Today returns the current date formatted as YYYY-MM-DD.
func Today() string {
	return Now().Format(DateLayout)
}

func NewID() string {
	return uuid.New().String()
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// IsAllGrades reports whether the grade filter selects every grade.
func IsAllGrades(grade string) bool {
	return grade == "" || grade == AllGrades
}

// Ordering is a sort instruction parsed from `?ordering=name,-created_at`.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
