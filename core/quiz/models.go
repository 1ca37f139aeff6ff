package quiz

import (
	"math"
	"time"
)

type (
	Question struct {
		Question   string   `json:"question"`
		Options    []string `json:"options"`
		Correct    string   `json:"correct"`
		Points     int      `json:"points"`
		Difficulty string   `json:"difficulty"`
	}

	// Session is a user's running (or last) quiz.
	Session struct {
		UserID            string     `json:"user_id"`
		Subject           string     `json:"subject"`
		Questions         []Question `json:"questions"`
		Current           int        `json:"current"`
		Score             int        `json:"score"`
		QuestionStartedAt time.Time  `json:"question_started_at"`
		Completed         bool       `json:"completed"`
		StartedAt         time.Time  `json:"started_at"`
		CompletedAt       time.Time  `json:"completed_at,omitempty"`
	}

	SubjectStats struct {
		Points  int `json:"points"`
		Quizzes int `json:"quizzes"`
		Correct int `json:"correct"`
		Total   int `json:"total"`
	}

	Stats struct {
		UserID           string                   `json:"user_id"`
		Name             string                   `json:"name"`
		TotalPoints      int                      `json:"total_points"`
		QuizzesCompleted int                      `json:"quizzes_completed"`
		CorrectAnswers   int                      `json:"correct_answers"`
		TotalAnswers     int                      `json:"total_answers"`
		SubjectStats     map[string]*SubjectStats `json:"subject_stats"`
	}

	StatsView struct {
		Stats
		Accuracy float64 `json:"accuracy"`
	}

	QuestionView struct {
		Question   string   `json:"question"`
		Options    []string `json:"options"`
		Points     int      `json:"points"`
		Difficulty string   `json:"difficulty"`
		Color      string   `json:"color"`
	}

	// SessionView is a Session without the answers.
	SessionView struct {
		Subject        string        `json:"subject"`
		QuestionNumber int           `json:"question_number"`
		TotalQuestions int           `json:"total_questions"`
		Question       *QuestionView `json:"question,omitempty"`
		TimeLeft       int           `json:"time_left"`
		Score          int           `json:"score"`
		Completed      bool          `json:"completed"`
	}

	Answer struct {
		Answer string `json:"answer"`
	}

	AnswerResult struct {
		Correct       bool        `json:"correct"`
		CorrectAnswer string      `json:"correct_answer"`
		PointsEarned  int         `json:"points_earned"`
		Session       SessionView `json:"session"`
	}

	LeaderboardEntry struct {
		Rank     int     `json:"rank"`
		UserID   string  `json:"user_id"`
		Name     string  `json:"name"`
		Points   int     `json:"points"`
		Quizzes  int     `json:"quizzes"`
		Accuracy float64 `json:"accuracy"`
	}
)

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

func (s Stats) Accuracy() float64 { return accuracy(s.CorrectAnswers, s.TotalAnswers) }

func (s Stats) View() StatsView {
	if s.SubjectStats == nil {
		s.SubjectStats = make(map[string]*SubjectStats)
	}
	return StatsView{Stats: s, Accuracy: s.Accuracy()}
}

func (s *Stats) subject(name string) *SubjectStats {
	if s.SubjectStats == nil {
		s.SubjectStats = make(map[string]*SubjectStats)
	}
	ss, ok := s.SubjectStats[name]
	if !ok {
		ss = new(SubjectStats)
		s.SubjectStats[name] = ss
	}
	return ss
}

// record counts an answer to a question of subject.
func (s *Stats) record(subject string, correct bool, points int) {
	ss := s.subject(subject)
	s.TotalAnswers++
	ss.Total++
	ss.Points += points
	if correct {
		s.CorrectAnswers++
		ss.Correct++
	}
}

func (s *Stats) complete(subject string, score int) {
	s.TotalPoints += score
	s.QuizzesCompleted++
	s.subject(subject).Quizzes++
}

// expire skips the questions whose time ran out at `now`. It reports whether the session got completed.
func (s *Session) expire(now time.Time, timeout time.Duration) bool {
	if s.Completed || timeout <= 0 {
		return false
	}
	for !s.Completed && now.Sub(s.QuestionStartedAt) >= timeout {
		s.QuestionStartedAt = s.QuestionStartedAt.Add(timeout)
		s.next(s.QuestionStartedAt)
	}
	return s.Completed
}

func (s *Session) next(at time.Time) {
	s.Current++
	s.QuestionStartedAt = at
	if s.Current >= len(s.Questions) {
		s.Completed = true
		s.CompletedAt = at
	}
}

func (s Session) View(now time.Time, timeout time.Duration) SessionView {
	v := SessionView{
		Subject:        s.Subject,
		QuestionNumber: s.Current + 1,
		TotalQuestions: len(s.Questions),
		Score:          s.Score,
		Completed:      s.Completed,
	}
	if s.Completed {
		v.QuestionNumber = len(s.Questions)
		return v
	}
	q := s.Questions[s.Current]
	v.Question = &QuestionView{
		Question:   q.Question,
		Options:    q.Options,
		Points:     q.Points,
		Difficulty: q.Difficulty,
		Color:      DifficultyColor(q.Difficulty),
	}
	left := timeout - now.Sub(s.QuestionStartedAt)
	if left < 0 {
		left = 0
	}
	v.TimeLeft = int(math.Ceil(left.Seconds()))
	return v
}
