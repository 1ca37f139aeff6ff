package attendance

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

var csvHeader = []string{"Student Name", "Student Number", "Status", "Date", "Marked By"}

type (
	Repository interface {
		// QueryRecords returns the records of date, or every record if date is empty.
		QueryRecords(ctx context.Context, date string) ([]Record, error)
		// UpsertRecord replaces the record of the same student & date, or appends rec.
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
	}

	StudentFinder interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		Students(ctx context.Context, grade string) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		students StudentFinder
		validate *validator.Validate
	}
)

func NewService(repo Repository, students StudentFinder, validate *validator.Validate) *Service {
	return &Service{repo: repo, students: students, validate: validate}
}

// Mark records the attendance status of a student on a date.
func (svc *Service) Mark(ctx context.Context, teacher user.User, m Mark) (Record, error) {
	if err := svc.validate.Struct(m); err != nil {
		return Record{}, err
	}
	student, err := svc.students.GetByID(ctx, m.StudentID)
	if err != nil || !student.IsStudent() {
		if err == nil || core.IsNotFound(err) {
			return Record{}, core.NewFieldError("student_id", "student not found")
		}
		return Record{}, errors.Wrap(err, "finding student")
	}

	return svc.repo.UpsertRecord(ctx, Record{
		StudentID:     student.ID,
		StudentName:   student.Name,
		StudentNumber: student.StudentNumber,
		Grade:         student.Grade,
		Date:          m.Date,
		Status:        m.Status,
		MarkedBy:      teacher.Name,
		MarkedAt:      core.Now(),
	})
}

func (svc *Service) ForDate(ctx context.Context, date string) ([]Record, error) {
	if !core.IsISODate(date) {
		return nil, core.NewFieldError("date", "date must be in YYYY-MM-DD format")
	}
	return svc.repo.QueryRecords(ctx, date)
}

// Roster returns the students of grade with their status on date ("" if not marked).
func (svc *Service) Roster(ctx context.Context, date, grade string) ([]RosterEntry, error) {
	records, err := svc.ForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]string, len(records))
	for _, r := range records {
		statuses[r.StudentID] = r.Status
	}

	students, err := svc.students.Students(ctx, grade)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	roster := make([]RosterEntry, 0, len(students))
	for _, s := range students {
		roster = append(roster, RosterEntry{
			StudentID:     s.ID,
			StudentName:   s.Name,
			StudentNumber: s.StudentNumber,
			Grade:         s.Grade,
			Status:        statuses[s.ID],
		})
	}
	return roster, nil
}

// Stats counts the statuses of the roster of grade on date.
func (svc *Service) Stats(ctx context.Context, date, grade string) (Stats, error) {
	roster, err := svc.Roster(ctx, date, grade)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Date: date, Total: len(roster)}
	for _, e := range roster {
		switch e.Status {
		case StatusPresent:
			stats.Present++
		case StatusAbsent:
			stats.Absent++
		case StatusLate:
			stats.Late++
		}
	}
	return stats, nil
}

// ExportFilename is the download name of ExportCSV files.
func ExportFilename(date string) string {
	return "attendance-" + date + ".csv"
}

// ExportCSV writes the records of date as CSV. Missing student numbers are written as N/A.
func (svc *Service) ExportCSV(ctx context.Context, date string, w io.Writer) error {
	records, err := svc.ForDate(ctx, date)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err = cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, r := range records {
		number := r.StudentNumber
		if number == "" {
			number = "N/A"
		}
		if err = cw.Write([]string{r.StudentName, number, r.Status, r.Date, r.MarkedBy}); err != nil {
			return errors.Wrap(err, "writing record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
