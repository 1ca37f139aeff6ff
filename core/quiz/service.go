// Package quiz implements the quiz game: timed sessions over a static question bank, per-user stats
// and the leaderboard.
package quiz

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

const LeaderboardSize = 10

var (
	// errors
	ErrNoQuestions   = core.NewFieldError("subject", "No questions available for this subject yet!")
	ErrNoAnswer      = core.NewFieldError("answer", "Please select an answer!")
	ErrInvalidAnswer = core.NewFieldError("answer", "answer must be one of the question options")
	ErrNoActiveQuiz  = errors.WithMessage(core.ErrNotFound, "active quiz")
	ErrQuizCompleted = errors.WithMessage(core.ErrConflict, "quiz already completed")
	ErrTimeUp        = errors.WithMessage(core.ErrConflict, "Time's up! Moving to next question.")
	ErrStatsNotFound = errors.WithMessage(core.ErrNotFound, "quiz stats")

	errUnchanged = errors.New("session unchanged")
)

var ShuffleFunc = shuffle // mockable

type (
	Repository interface {
		GetSession(ctx context.Context, userID string) (Session, error)
		SaveSession(ctx context.Context, s Session) error
		UpdateSession(ctx context.Context, userID string, fn func(*Session) error) (Session, error)
		// GetStats returns ErrStatsNotFound if the user never played.
		GetStats(ctx context.Context, userID string) (Stats, error)
		UpdateStats(ctx context.Context, userID string, fn func(*Stats) error) (Stats, error)
		QueryStats(ctx context.Context) ([]Stats, error)
	}

	StudentFinder interface {
		Students(ctx context.Context, grade string) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		students StudentFinder
		conf     core.QuizConfig
	}
)

func shuffle(qs []Question) {
	rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

func NewService(repo Repository, students StudentFinder, conf core.QuizConfig) *Service {
	if conf.QuestionsPerQuiz <= 0 {
		conf.QuestionsPerQuiz = 5
	}
	return &Service{repo: repo, students: students, conf: conf}
}

// Start begins a new quiz on subject, replacing any running one.
func (svc *Service) Start(ctx context.Context, usr user.User, subject string) (SessionView, error) {
	qs := Questions(core.CleanString(subject, true /* lower */))
	if len(qs) == 0 {
		return SessionView{}, ErrNoQuestions
	}
	ShuffleFunc(qs)
	if len(qs) > svc.conf.QuestionsPerQuiz {
		qs = qs[:svc.conf.QuestionsPerQuiz]
	}

	now := core.Now()
	sess := Session{
		UserID:            usr.ID,
		Subject:           core.CleanString(subject, true),
		Questions:         qs,
		StartedAt:         now,
		QuestionStartedAt: now,
	}
	if err := svc.repo.SaveSession(ctx, sess); err != nil {
		return SessionView{}, err
	}
	return sess.View(now, svc.conf.QuestionTimeout), nil
}

// expire skips the timed out questions of the user's session and credits the stats
// if that completed the quiz.
func (svc *Service) expire(ctx context.Context, usr user.User, now time.Time) (Session, error) {
	completed := false
	sess, err := svc.repo.UpdateSession(ctx, usr.ID, func(s *Session) error {
		cur := s.Current
		completed = s.expire(now, svc.conf.QuestionTimeout)
		if s.Current == cur {
			return errUnchanged
		}
		return nil
	})
	if errors.Cause(err) == errUnchanged {
		return svc.repo.GetSession(ctx, usr.ID)
	}
	if err != nil {
		return Session{}, err
	}
	if completed {
		if _, err = svc.updateStats(ctx, usr, func(st *Stats) { st.complete(sess.Subject, sess.Score) }); err != nil {
			return Session{}, err
		}
	}
	return sess, nil
}

// Current returns the user's quiz, without answers.
func (svc *Service) Current(ctx context.Context, usr user.User) (SessionView, error) {
	now := core.Now()
	sess, err := svc.expire(ctx, usr, now)
	if err != nil {
		return SessionView{}, err
	}
	return sess.View(now, svc.conf.QuestionTimeout), nil
}

// Answer answers the current question. The quiz completes with the last question.
func (svc *Service) Answer(ctx context.Context, usr user.User, ans Answer) (AnswerResult, error) {
	ans.Answer = core.CleanString(ans.Answer)
	if ans.Answer == "" {
		return AnswerResult{}, ErrNoAnswer
	}

	now := core.Now()
	var (
		res      AnswerResult
		timedOut bool
	)
	sess, err := svc.repo.UpdateSession(ctx, usr.ID, func(s *Session) error {
		if s.Completed {
			return ErrQuizCompleted
		}
		cur := s.Current
		s.expire(now, svc.conf.QuestionTimeout)
		if s.Current != cur {
			timedOut = true
			return nil
		}

		q := s.Questions[s.Current]
		if !contains(q.Options, ans.Answer) {
			return ErrInvalidAnswer
		}
		res.CorrectAnswer = q.Correct
		if ans.Answer == q.Correct {
			res.Correct = true
			res.PointsEarned = q.Points
			s.Score += q.Points
		}
		s.next(now)
		return nil
	})
	if err != nil {
		return AnswerResult{}, err
	}

	if timedOut {
		if sess.Completed {
			if _, err = svc.updateStats(ctx, usr, func(st *Stats) { st.complete(sess.Subject, sess.Score) }); err != nil {
				return AnswerResult{}, err
			}
		}
		return AnswerResult{}, ErrTimeUp
	}

	_, err = svc.updateStats(ctx, usr, func(st *Stats) {
		st.record(sess.Subject, res.Correct, res.PointsEarned)
		if sess.Completed {
			st.complete(sess.Subject, sess.Score)
		}
	})
	if err != nil {
		return AnswerResult{}, err
	}
	res.Session = sess.View(now, svc.conf.QuestionTimeout)
	return res, nil
}

func (svc *Service) updateStats(ctx context.Context, usr user.User, fn func(*Stats)) (Stats, error) {
	return svc.repo.UpdateStats(ctx, usr.ID, func(st *Stats) error {
		st.UserID = usr.ID
		st.Name = usr.Name
		fn(st)
		return nil
	})
}

// Stats returns the user's stats, zeroed if the user never played.
func (svc *Service) Stats(ctx context.Context, usr user.User) (StatsView, error) {
	st, err := svc.repo.GetStats(ctx, usr.ID)
	if err != nil {
		if !core.IsNotFound(err) {
			return StatsView{}, err
		}
		st = Stats{UserID: usr.ID, Name: usr.Name}
	}
	return st.View(), nil
}

// Leaderboard returns the top players by total points. Active students who never played rank with 0 points.
func (svc *Service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	all, err := svc.repo.QueryStats(ctx)
	if err != nil {
		return nil, err
	}
	students, err := svc.students.Students(ctx, core.AllGrades)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	played := make(map[string]bool, len(all))
	for _, st := range all {
		played[st.UserID] = true
	}
	for _, s := range students {
		if !played[s.ID] {
			all = append(all, Stats{UserID: s.ID, Name: s.Name})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].TotalPoints != all[j].TotalPoints {
			return all[i].TotalPoints > all[j].TotalPoints
		}
		return all[i].Name < all[j].Name
	})
	if len(all) > LeaderboardSize {
		all = all[:LeaderboardSize]
	}

	board := make([]LeaderboardEntry, 0, len(all))
	for i, st := range all {
		board = append(board, LeaderboardEntry{
			Rank:     i + 1,
			UserID:   st.UserID,
			Name:     st.Name,
			Points:   st.TotalPoints,
			Quizzes:  st.QuizzesCompleted,
			Accuracy: st.Accuracy(),
		})
	}
	return board, nil
}

func contains(opts []string, s string) bool {
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}
