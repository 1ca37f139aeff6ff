package performance_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/performance"
	"github.com/trezcool/scola/core/tutor"
	"github.com/trezcool/scola/core/user"
	"github.com/trezcool/scola/storage/kvrepos"
	"github.com/trezcool/scola/tests"
)

const scoresCSV = `Student Name,Student Number,Subject,Topic,Score,Term,Year,Date
Alice Johnson,STU001,Mathematics,Algebra,45,Term 1,2026,2026-02-01
Alice Johnson,STU001,Mathematics,Geometry,38,Term 1,2026,2026-02-08
Alice Johnson,STU001,English,Grammar,85,Term 1,2026,2026-02-15
Bob Smith,STU002,Mathematics,Algebra,92,Term 1,2026,2026-02-01
Bob Smith,STU002,Science,Physics,65,Term 1,2026,2026-02-01
,,Science,Physics,70,Term 1,2026,2026-02-01
`

func setup(t *testing.T) (*performance.Service, user.Repository) {
	conf := testutil.NewConfig()
	validate, _ := testutil.NewValidator()
	store := testutil.NewStore(t)

	usrRepo := kvrepos.NewUserRepository(store)
	tutorRepo := kvrepos.NewTutorRepository(store)
	_, err := tutor.SeedDemoData(context.Background(), tutorRepo)
	require.NoError(t, err)
	tutorSvc := tutor.NewService(tutorRepo, user.NewService(usrRepo, validate), testutil.NewMailer(conf), validate)

	return performance.NewService(kvrepos.NewPerformanceRepository(store), tutorSvc, validate), usrRepo
}

func upload(t *testing.T, svc *performance.Service, uploader user.User, grade, csv string) performance.ImportResult {
	res, err := svc.Import(context.Background(), uploader, performance.Upload{
		Grade:    grade,
		Filename: "scores.csv",
		File:     strings.NewReader(csv),
	})
	require.NoError(t, err)
	return res
}

func TestService_Import(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)

	t.Run("grade required", func(t *testing.T) {
		_, err := svc.Import(ctx, teacher, performance.Upload{Filename: "scores.csv", File: strings.NewReader(scoresCSV)})
		assert.EqualError(t, err, "Please select a grade for this upload first")
	})

	t.Run("unsupported file", func(t *testing.T) {
		_, err := svc.Import(ctx, teacher, performance.Upload{Grade: "Grade 10", Filename: "scores.xls", File: strings.NewReader("")})
		assert.Equal(t, performance.ErrUnsupportedFile, err)
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := svc.Import(ctx, teacher, performance.Upload{Grade: "Grade 10", Filename: "scores.csv", File: strings.NewReader("studentName,subject\n")})
		assert.Equal(t, performance.ErrEmptyFile, err)
	})

	t.Run("imported", func(t *testing.T) {
		res := upload(t, svc, teacher, "Grade 10", scoresCSV)
		assert.Equal(t, performance.ImportResult{Imported: 5, Skipped: 1}, res)

		records, err := svc.Records(ctx, "Grade 10")
		require.NoError(t, err)
		require.Len(t, records, 5)
		for _, r := range records {
			assert.NotEmpty(t, r.ID)
			assert.Equal(t, teacher.ID, r.UploadedBy)
			assert.Equal(t, "Grade 10", r.Grade)
		}
	})

	t.Run("non-finite scores", func(t *testing.T) {
		res := upload(t, svc, teacher, "Grade 12", "Student Name,Subject,Score\nAlice,Maths,NaN\nBob,Maths,1e400\nCarol,Maths,Inf\n")
		assert.Equal(t, performance.ImportResult{Imported: 3}, res)

		records, err := svc.Records(ctx, "Grade 12")
		require.NoError(t, err)
		require.Len(t, records, 3)
		for _, r := range records {
			assert.Zero(t, r.Score)
		}
	})

	t.Run("appended", func(t *testing.T) {
		upload(t, svc, teacher, "Grade 11", "studentName,subject,score\nCarol Davis,Science,72\n")

		grades, err := svc.Grades(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{core.AllGrades, "Grade 10", "Grade 11", "Grade 12"}, grades)

		records, err := svc.Records(ctx, core.AllGrades)
		require.NoError(t, err)
		assert.Len(t, records, 9)
	})
}

func TestService_analytics(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	upload(t, svc, teacher, "Grade 10", scoresCSV)

	stats, err := svc.Stats(ctx, "Grade 10")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, 1, stats.StrugglingCount)

	stats, err = svc.Stats(ctx, "Grade 12")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRecords)

	struggling, err := svc.StrugglingStudents(ctx, core.AllGrades)
	require.NoError(t, err)
	require.Len(t, struggling, 1)
	require.Len(t, struggling[0].RecommendedTutors, 1)
	assert.Equal(t, "Dr. Sarah Wilson", struggling[0].RecommendedTutors[0].Name)

	excelling, err := svc.ExcellingStudents(ctx, core.AllGrades)
	require.NoError(t, err)
	assert.Len(t, excelling, 2)

	topics, err := svc.TopicChart(ctx, core.AllGrades)
	require.NoError(t, err)
	assert.Equal(t, performance.ChartPoint{Name: "Algebra", Value: 68.5}, topics[0])

	subjects, err := svc.SubjectChart(ctx, core.AllGrades)
	require.NoError(t, err)
	assert.Len(t, subjects, 3)
}

func TestService_StudentSummary(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	alice := testutil.CreateStudent(t, usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	upload(t, svc, teacher, "Grade 10", scoresCSV)

	sum, err := svc.StudentSummary(ctx, alice, 5)
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", sum.StudentName)
	assert.Equal(t, 3, sum.TotalTests)
	assert.Equal(t, 56.0, sum.AvgScore)
	assert.Equal(t, performance.RiskMedium, sum.RiskLevel)
	assert.Equal(t, []string{"Mathematics"}, sum.StrugglingSubjects)
	require.Len(t, sum.RecommendedTutors, 1)

	newcomer := testutil.CreateStudent(t, usrRepo, "New Kid", "new@test.cd", "STU099", "Grade 10")
	sum, err = svc.StudentSummary(ctx, newcomer, 5)
	require.NoError(t, err)
	assert.Zero(t, sum.TotalTests)
	assert.Empty(t, sum.RecommendedTutors)
}

func TestService_ExportStats(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()

	assert.Equal(t, performance.ErrNoStats, svc.ExportStats(ctx, core.AllGrades, new(bytes.Buffer)))

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	upload(t, svc, teacher, "Grade 10", scoresCSV)

	buf := new(bytes.Buffer)
	require.NoError(t, svc.ExportStats(ctx, "Grade 10", buf))
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	v, err := f.GetCellValue("Statistics", "B3")
	require.NoError(t, err)
	assert.Equal(t, "5", v)
}
