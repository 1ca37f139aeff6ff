package performance

import (
	"math"
	"sort"
	"strings"

	"github.com/trezcool/scola/core"
)

const (
	topicChartSize     = 10
	topicChartNameSize = 15
)

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func average(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var total float64
	for _, r := range records {
		total += r.Score
	}
	return round1(total / float64(len(records)))
}

// FilterByGrade keeps the records of grade. core.AllGrades keeps everything.
func FilterByGrade(records []Record, grade string) []Record {
	if core.IsAllGrades(grade) {
		return records
	}
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Grade == grade {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ForStudent keeps the records of a student, matched on number when both have one, else on name.
func ForStudent(records []Record, name, number string) []Record {
	filtered := make([]Record, 0)
	for _, r := range records {
		if number != "" && r.StudentNumber != "" {
			if r.StudentNumber == number {
				filtered = append(filtered, r)
			}
			continue
		}
		if strings.EqualFold(r.StudentName, name) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Grades returns core.AllGrades followed by the sorted distinct grades of records.
func Grades(records []Record) []string {
	seen := make(map[string]bool)
	grades := make([]string, 0)
	for _, r := range records {
		if r.Grade != "" && !seen[r.Grade] {
			seen[r.Grade] = true
			grades = append(grades, r.Grade)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return gradeRank(grades[i]) < gradeRank(grades[j]) })
	return append([]string{core.AllGrades}, grades...)
}

func gradeRank(grade string) int {
	for i, g := range core.Grades {
		if g == grade {
			return i
		}
	}
	return len(core.Grades)
}

// CalculateStats summarizes records: distinct students, struggling (any score < 50),
// excelling (any score >= 80) and per subject score distribution.
func CalculateStats(records []Record) Stats {
	stats := Stats{
		TotalRecords:       len(records),
		StudentsStruggling: make([]string, 0),
		StudentsExcelling:  make([]string, 0),
		SubjectStats:       make(map[string]SubjectStats),
	}

	students := make(map[string]bool)
	struggling := make(map[string]bool)
	excelling := make(map[string]bool)
	bySubject := make(map[string][]Record)

	for _, r := range records {
		students[r.StudentName] = true
		if r.Score < StrugglingBelow && !struggling[r.StudentName] {
			struggling[r.StudentName] = true
			stats.StudentsStruggling = append(stats.StudentsStruggling, r.StudentName)
		}
		if r.Score >= ExcellingFrom && !excelling[r.StudentName] {
			excelling[r.StudentName] = true
			stats.StudentsExcelling = append(stats.StudentsExcelling, r.StudentName)
		}
		bySubject[r.Subject] = append(bySubject[r.Subject], r)
	}
	stats.TotalStudents = len(students)
	stats.StrugglingCount = len(struggling)
	stats.ExcellingCount = len(excelling)

	for subject, recs := range bySubject {
		ss := SubjectStats{Average: average(recs)}
		for _, r := range recs {
			switch {
			case r.Score < StrugglingBelow:
				ss.Struggling++
			case r.Score < ModerateBelow:
				ss.Moderate++
			case r.Score >= ExcellingFrom:
				ss.Excelling++
			}
		}
		stats.SubjectStats[subject] = ss
	}
	return stats
}

// TopicPerformances returns the average score per topic, in order of first appearance.
func TopicPerformances(records []Record) []TopicPerformance {
	idx := make(map[string]int)
	sums := make([]float64, 0)
	topics := make([]TopicPerformance, 0)
	for _, r := range records {
		if r.Topic == "" {
			continue
		}
		i, ok := idx[r.Topic]
		if !ok {
			i = len(topics)
			idx[r.Topic] = i
			topics = append(topics, TopicPerformance{Topic: r.Topic, Subject: r.Subject})
			sums = append(sums, 0)
		}
		topics[i].Count++
		sums[i] += r.Score
	}
	for i := range topics {
		topics[i].Average = round1(sums[i] / float64(topics[i].Count))
	}
	return topics
}

// groupByStudent groups records per student name, in order of first appearance.
func groupByStudent(records []Record) ([]string, map[string][]Record) {
	names := make([]string, 0)
	groups := make(map[string][]Record)
	for _, r := range records {
		if _, ok := groups[r.StudentName]; !ok {
			names = append(names, r.StudentName)
		}
		groups[r.StudentName] = append(groups[r.StudentName], r)
	}
	return names, groups
}

// extremeBySubject keeps, per subject, the record selected by better among those passing keep.
func extremeBySubject(records []Record, keep func(float64) bool, better func(a, b float64) bool) []SubjectScore {
	idx := make(map[string]int)
	scores := make([]SubjectScore, 0)
	for _, r := range records {
		if !keep(r.Score) {
			continue
		}
		i, ok := idx[r.Subject]
		if !ok {
			idx[r.Subject] = len(scores)
			scores = append(scores, SubjectScore{Subject: r.Subject, Topic: r.Topic, Score: r.Score})
			continue
		}
		if better(r.Score, scores[i].Score) {
			scores[i] = SubjectScore{Subject: r.Subject, Topic: r.Topic, Score: r.Score}
		}
	}
	return scores
}

// WeakSubjects returns the lowest failing (< 50) score of every subject.
func WeakSubjects(records []Record) []SubjectScore {
	return extremeBySubject(
		records,
		func(s float64) bool { return s < StrugglingBelow },
		func(a, b float64) bool { return a < b },
	)
}

// StrongSubjects returns the best excelling (>= 80) score of every subject.
func StrongSubjects(records []Record) []SubjectScore {
	return extremeBySubject(
		records,
		func(s float64) bool { return s >= ExcellingFrom },
		func(a, b float64) bool { return a > b },
	)
}

func subjectNames(scores []SubjectScore) []string {
	names := make([]string, 0, len(scores))
	for _, s := range scores {
		names = append(names, s.Subject)
	}
	return names
}

// StrugglingStudents returns the students with at least one failing score. Tutors are not set.
func StrugglingStudents(records []Record) []StudentInsight {
	names, groups := groupByStudent(records)
	insights := make([]StudentInsight, 0)
	for _, name := range names {
		recs := groups[name]
		weak := WeakSubjects(recs)
		if len(weak) == 0 {
			continue
		}
		insights = append(insights, StudentInsight{
			StudentName:     name,
			StudentNumber:   recs[0].StudentNumber,
			Grade:           recs[0].Grade,
			AvgScore:        average(recs),
			WeakSubjects:    weak,
			PastPerformance: recs,
		})
	}
	return insights
}

// ExcellingStudents returns the students with at least one excelling score.
func ExcellingStudents(records []Record) []StudentInsight {
	names, groups := groupByStudent(records)
	insights := make([]StudentInsight, 0)
	for _, name := range names {
		recs := groups[name]
		strong := StrongSubjects(recs)
		if len(strong) == 0 {
			continue
		}
		insights = append(insights, StudentInsight{
			StudentName:    name,
			StudentNumber:  recs[0].StudentNumber,
			Grade:          recs[0].Grade,
			AvgScore:       average(recs),
			StrongSubjects: strong,
		})
	}
	return insights
}

// RiskLevel classifies an average score.
func RiskLevel(avg float64) string {
	switch {
	case avg < StrugglingBelow:
		return RiskHigh
	case avg < ModerateBelow:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Summarize builds the overview of a single student's records. recent is the number of latest records kept.
func Summarize(name string, records []Record, recent int) Summary {
	sum := Summary{
		StudentName:        name,
		AvgScore:           average(records),
		TotalTests:         len(records),
		StrugglingSubjects: subjectNames(WeakSubjects(records)),
		StrongSubjects:     subjectNames(StrongSubjects(records)),
		RecentPerformance:  make([]Record, 0, recent),
	}
	for i := len(records) - 1; i >= 0 && len(sum.RecentPerformance) < recent; i-- {
		sum.RecentPerformance = append(sum.RecentPerformance, records[i])
	}
	sum.RiskLevel = RiskLevel(sum.AvgScore)
	return sum
}

// SubjectChart returns one point per subject, sorted by name.
func SubjectChart(stats Stats) []SubjectChartPoint {
	points := make([]SubjectChartPoint, 0, len(stats.SubjectStats))
	for subject, ss := range stats.SubjectStats {
		points = append(points, SubjectChartPoint{
			Name:       subject,
			Average:    ss.Average,
			Struggling: ss.Struggling,
			Moderate:   ss.Moderate,
			Excelling:  ss.Excelling,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
	return points
}

// TopicChart returns the average of the first 10 topics, names cut to 15 characters.
func TopicChart(topics []TopicPerformance) []ChartPoint {
	if len(topics) > topicChartSize {
		topics = topics[:topicChartSize]
	}
	points := make([]ChartPoint, 0, len(topics))
	for _, t := range topics {
		name := t.Topic
		if r := []rune(name); len(r) > topicChartNameSize {
			name = string(r[:topicChartNameSize]) + "..."
		}
		points = append(points, ChartPoint{Name: name, Value: t.Average})
	}
	return points
}
