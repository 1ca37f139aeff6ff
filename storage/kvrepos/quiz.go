package kvrepos

import (
	"context"
	"strings"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/quiz"
)

type quizRepository struct {
	store    core.KVStore
	sessions collection[quiz.Session]
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(store core.KVStore) quiz.Repository {
	return &quizRepository{store: store, sessions: collection[quiz.Session]{store: store, key: KeyQuizSessions}}
}

func (repo *quizRepository) stats(userID string) document[quiz.Stats] {
	return document[quiz.Stats]{store: repo.store, key: PrefixQuizStats + userID}
}

func (repo *quizRepository) GetSession(ctx context.Context, userID string) (quiz.Session, error) {
	sessions, err := repo.sessions.load(ctx)
	if err != nil {
		return quiz.Session{}, err
	}
	for _, s := range sessions {
		if s.UserID == userID {
			return s, nil
		}
	}
	return quiz.Session{}, quiz.ErrNoActiveQuiz
}

func (repo *quizRepository) SaveSession(ctx context.Context, sess quiz.Session) error {
	return repo.sessions.update(ctx, func(sessions []quiz.Session) ([]quiz.Session, error) {
		for i, s := range sessions {
			if s.UserID == sess.UserID {
				sessions[i] = sess
				return sessions, nil
			}
		}
		return append(sessions, sess), nil
	})
}

func (repo *quizRepository) UpdateSession(
	ctx context.Context, userID string, fn func(*quiz.Session) error,
) (quiz.Session, error) {
	return repo.sessions.updateOne(
		ctx, func(s quiz.Session) bool { return s.UserID == userID }, fn, quiz.ErrNoActiveQuiz,
	)
}

func (repo *quizRepository) GetStats(ctx context.Context, userID string) (quiz.Stats, error) {
	return repo.stats(userID).load(ctx, quiz.ErrStatsNotFound)
}

func (repo *quizRepository) UpdateStats(ctx context.Context, userID string, fn func(*quiz.Stats) error) (quiz.Stats, error) {
	return repo.stats(userID).update(ctx, fn)
}

func (repo *quizRepository) QueryStats(ctx context.Context) ([]quiz.Stats, error) {
	keys, err := repo.store.Keys(ctx, PrefixQuizStats)
	if err != nil {
		return nil, err
	}
	all := make([]quiz.Stats, 0, len(keys))
	for _, key := range keys {
		st, err := repo.stats(strings.TrimPrefix(key, PrefixQuizStats)).load(ctx, quiz.ErrStatsNotFound)
		if err != nil {
			if core.IsNotFound(err) { // deleted meanwhile
				continue
			}
			return nil, err
		}
		all = append(all, st)
	}
	return all, nil
}
