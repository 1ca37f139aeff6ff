package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

// userRecord persists the password hash that user.User hides from JSON.
type userRecord struct {
	user.User
	PasswordHash []byte `json:"password_hash"`
}

func (rec userRecord) toUser() user.User {
	usr := rec.User
	usr.PasswordHash = rec.PasswordHash
	return usr
}

func toRecord(usr user.User) userRecord {
	return userRecord{User: usr, PasswordHash: usr.PasswordHash}
}

type userRepository struct {
	users collection[userRecord]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(store core.KVStore) user.Repository {
	return &userRepository{users: collection[userRecord]{store: store, key: KeyUsers}}
}

func (repo *userRepository) query(ctx context.Context) ([]user.User, error) {
	recs, err := repo.users.load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, rec.toUser())
	}
	return users, nil
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	users, err := repo.query(ctx)
	if err != nil {
		return err
	}
	for _, usr := range users {
		if usr.Email == email && !isExcluded(usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = core.NewID()
	err := repo.users.update(ctx, func(recs []userRecord) ([]userRecord, error) {
		for _, rec := range recs {
			if rec.Email == usr.Email {
				return nil, user.ErrEmailExists
			}
		}
		return append(recs, toRecord(usr)), nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.Ordering) ([]user.User, error) {
	users, err := repo.query(ctx)
	if err != nil {
		return nil, err
	}
	users = user.Filter(users, filter)
	user.Sort(users, ordering)
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	users, err := repo.query(ctx)
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		switch {
		case filter.ID != "":
			if usr.ID == filter.ID {
				return usr, nil
			}
		case filter.Email != "":
			if usr.Email == filter.Email {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	var updated userRecord
	err := repo.users.update(ctx, func(recs []userRecord) ([]userRecord, error) {
		idx := -1
		for i, rec := range recs {
			switch {
			case rec.ID == usr.ID:
				idx = i
			case rec.Email == usr.Email:
				return nil, user.ErrEmailExists
			}
		}
		if idx < 0 {
			return nil, user.ErrNotFound
		}
		updated = toRecord(usr)
		recs[idx] = updated
		return recs, nil
	})
	if err != nil {
		return user.User{}, err
	}
	return updated.toUser(), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	toDelete := make(map[string]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}
	return repo.users.update(ctx, func(recs []userRecord) ([]userRecord, error) {
		kept := recs[:0]
		for _, rec := range recs {
			if !toDelete[rec.ID] {
				kept = append(kept, rec)
			}
		}
		return kept, nil
	})
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}
