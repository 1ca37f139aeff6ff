package performance

import (
	"context"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/tutor"
	"github.com/trezcool/scola/core/user"
)

// ExportFilename is the download name of ExportStats workbooks.
const ExportFilename = "teacher-stats.xlsx"

type (
	Repository interface {
		AddRecords(ctx context.Context, recs []Record) error
		// QueryRecords returns the records of grade, in upload order. core.AllGrades returns all.
		QueryRecords(ctx context.Context, grade string) ([]Record, error)
	}

	TutorRecommender interface {
		Recommend(ctx context.Context, subjects []string, limit int) ([]tutor.Tutor, error)
	}

	Service struct {
		repo     Repository
		tutors   TutorRecommender
		validate *validator.Validate
	}
)

func NewService(repo Repository, tutors TutorRecommender, validate *validator.Validate) *Service {
	return &Service{repo: repo, tutors: tutors, validate: validate}
}

// Import appends the records of an uploaded spreadsheet, all assigned to the upload's grade.
func (svc *Service) Import(ctx context.Context, uploader user.User, up Upload) (ImportResult, error) {
	if err := svc.validate.Struct(up); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok && up.Grade == "" {
			return ImportResult{}, core.NewFieldError("grade", "Please select a grade for this upload first")
		}
		return ImportResult{}, err
	}

	rows, err := ReadRows(up.File, up.Filename)
	if err != nil {
		return ImportResult{}, err
	}
	records, skipped := ParseRecords(rows, up.Grade)
	if len(records) == 0 {
		return ImportResult{}, ErrEmptyFile
	}

	now := core.Now()
	for i := range records {
		records[i].UploadedBy = uploader.ID
		records[i].UploadedAt = now
	}
	if err = svc.repo.AddRecords(ctx, records); err != nil {
		return ImportResult{}, errors.Wrap(err, "adding records")
	}
	return ImportResult{Imported: len(records), Skipped: skipped}, nil
}

func (svc *Service) Records(ctx context.Context, grade string) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, grade)
}

func (svc *Service) Grades(ctx context.Context) ([]string, error) {
	records, err := svc.repo.QueryRecords(ctx, core.AllGrades)
	if err != nil {
		return nil, err
	}
	return Grades(records), nil
}

func (svc *Service) Stats(ctx context.Context, grade string) (Stats, error) {
	records, err := svc.repo.QueryRecords(ctx, grade)
	if err != nil {
		return Stats{}, err
	}
	return CalculateStats(records), nil
}

func (svc *Service) Topics(ctx context.Context, grade string) ([]TopicPerformance, error) {
	records, err := svc.repo.QueryRecords(ctx, grade)
	if err != nil {
		return nil, err
	}
	return TopicPerformances(records), nil
}

// StrugglingStudents returns the struggling students of grade with up to 3 tutors for their weak subjects.
func (svc *Service) StrugglingStudents(ctx context.Context, grade string) ([]StudentInsight, error) {
	records, err := svc.repo.QueryRecords(ctx, grade)
	if err != nil {
		return nil, err
	}
	insights := StrugglingStudents(records)
	for i := range insights {
		tutors, err := svc.tutors.Recommend(ctx, subjectNames(insights[i].WeakSubjects), tutor.MaxRecommendations)
		if err != nil {
			return nil, errors.Wrap(err, "recommending tutors")
		}
		insights[i].RecommendedTutors = tutors
	}
	return insights, nil
}

func (svc *Service) ExcellingStudents(ctx context.Context, grade string) ([]StudentInsight, error) {
	records, err := svc.repo.QueryRecords(ctx, grade)
	if err != nil {
		return nil, err
	}
	return ExcellingStudents(records), nil
}

// StudentSummary returns the performance overview of a student user, keeping the `recent` latest records.
func (svc *Service) StudentSummary(ctx context.Context, student user.User, recent int) (Summary, error) {
	records, err := svc.repo.QueryRecords(ctx, core.AllGrades)
	if err != nil {
		return Summary{}, err
	}
	sum := Summarize(student.Name, ForStudent(records, student.Name, student.StudentNumber), recent)
	sum.RecommendedTutors, err = svc.tutors.Recommend(ctx, sum.StrugglingSubjects, tutor.MaxRecommendations)
	if err != nil {
		return Summary{}, errors.Wrap(err, "recommending tutors")
	}
	return sum, nil
}

func (svc *Service) SubjectChart(ctx context.Context, grade string) ([]SubjectChartPoint, error) {
	stats, err := svc.Stats(ctx, grade)
	if err != nil {
		return nil, err
	}
	return SubjectChart(stats), nil
}

func (svc *Service) TopicChart(ctx context.Context, grade string) ([]ChartPoint, error) {
	topics, err := svc.Topics(ctx, grade)
	if err != nil {
		return nil, err
	}
	return TopicChart(topics), nil
}

// ExportStats writes the stats of grade as an xlsx workbook.
func (svc *Service) ExportStats(ctx context.Context, grade string, w io.Writer) error {
	stats, err := svc.Stats(ctx, grade)
	if err != nil {
		return err
	}
	if stats.TotalRecords == 0 {
		return ErrNoStats
	}
	return WriteStatsWorkbook(w, stats)
}
