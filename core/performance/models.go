package performance

import (
	"io"
	"time"

	"github.com/trezcool/scola/core/tutor"
)

// Score thresholds
const (
	StrugglingBelow = 50.0
	ModerateBelow   = 70.0
	ExcellingFrom   = 80.0
)

// Risk levels
const (
	RiskHigh   = "High Risk"
	RiskMedium = "Medium Risk"
	RiskLow    = "Low Risk"
)

type Record struct {
	ID            string    `json:"id"`
	StudentName   string    `json:"student_name"`
	StudentNumber string    `json:"student_number"`
	Subject       string    `json:"subject"`
	Topic         string    `json:"topic"`
	Score         float64   `json:"score"`
	Grade         string    `json:"grade"`
	Term          string    `json:"term"`
	Year          int       `json:"year"`
	Date          string    `json:"date"`
	UploadedBy    string    `json:"uploaded_by"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

type SubjectStats struct {
	Average    float64 `json:"average"`
	Struggling int     `json:"struggling"`
	Moderate   int     `json:"moderate"`
	Excelling  int     `json:"excelling"`
}

type Stats struct {
	TotalStudents      int                     `json:"total_students"`
	TotalRecords       int                     `json:"total_records"`
	StrugglingCount    int                     `json:"struggling_count"`
	ExcellingCount     int                     `json:"excelling_count"`
	StudentsStruggling []string                `json:"students_struggling"`
	StudentsExcelling  []string                `json:"students_excelling"`
	SubjectStats       map[string]SubjectStats `json:"subject_stats"`
}

type SubjectScore struct {
	Subject string  `json:"subject"`
	Topic   string  `json:"topic"`
	Score   float64 `json:"score"`
}

// StudentInsight describes a struggling or excelling student.
type StudentInsight struct {
	StudentName       string         `json:"student_name"`
	StudentNumber     string         `json:"student_number"`
	Grade             string         `json:"grade"`
	AvgScore          float64        `json:"avg_score"`
	WeakSubjects      []SubjectScore `json:"weak_subjects,omitempty"`
	StrongSubjects    []SubjectScore `json:"strong_subjects,omitempty"`
	PastPerformance   []Record       `json:"past_performance,omitempty"`
	RecommendedTutors []tutor.Tutor  `json:"recommended_tutors,omitempty"`
}

type TopicPerformance struct {
	Topic   string  `json:"topic"`
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Summary is a single student's performance overview.
type Summary struct {
	StudentName        string        `json:"student_name"`
	AvgScore           float64       `json:"avg_score"`
	TotalTests         int           `json:"total_tests"`
	StrugglingSubjects []string      `json:"struggling_subjects"`
	StrongSubjects     []string      `json:"strong_subjects"`
	RecentPerformance  []Record      `json:"recent_performance"`
	RiskLevel          string        `json:"risk_level"`
	RecommendedTutors  []tutor.Tutor `json:"recommended_tutors"`
}

type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type SubjectChartPoint struct {
	Name       string  `json:"name"`
	Average    float64 `json:"average"`
	Struggling int     `json:"struggling"`
	Moderate   int     `json:"moderate"`
	Excelling  int     `json:"excelling"`
}

// Upload is a spreadsheet of score records. Every row is assigned Grade.
type Upload struct {
	Grade    string    `json:"grade" validate:"required,grade"`
	Filename string    `json:"file" validate:"required"`
	File     io.Reader `json:"-"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
