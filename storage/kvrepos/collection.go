// Package kvrepos implements the domain repositories over a core.KVStore.
// Every collection is a JSON array stored under a fixed key.
package kvrepos

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
)

// Collection keys
const (
	KeyUsers           = "users"
	KeyPerformanceData = "performanceData"
	KeyAssignments     = "assignments"
	KeyAttendance      = "attendance"
	KeyTutors          = "tutors"
	KeyTutorBookings   = "tutorBookings"
	KeyMessages        = "messages"
	KeyReports         = "reports"
	KeyCalendarEvents  = "calendarEvents"
	KeyMeetings        = "parentTeacherMeetings"
	KeyQuizSessions    = "quizSessions"
	PrefixChat         = "chat-"
	PrefixQuizStats    = "quizStats-"
)

// PurgeableKeys are the collections wiped by the admin `purge` command.
var PurgeableKeys = []string{KeyPerformanceData, KeyTutorBookings, KeyMeetings, KeyReports}

type collection[T any] struct {
	store core.KVStore
	key   string
}

func decode[T any](data []byte, key string) ([]T, error) {
	items := make([]T, 0)
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", key)
	}
	if items == nil { // stored `null`
		items = make([]T, 0)
	}
	return items, nil
}

func (c collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if core.IsNotFound(err) {
			return make([]T, 0), nil
		}
		return nil, errors.Wrapf(err, "loading %s", c.key)
	}
	return decode[T](data, c.key)
}

// update loads the collection, applies fn and writes the result back atomically.
func (c collection[T]) update(ctx context.Context, fn func([]T) ([]T, error)) error {
	return c.store.Update(ctx, c.key, func(data []byte) ([]byte, error) {
		items, err := decode[T](data, c.key)
		if err != nil {
			return nil, err
		}
		if items, err = fn(items); err != nil {
			return nil, err
		}
		if items == nil {
			items = make([]T, 0)
		}
		return json.Marshal(items)
	})
}

// updateOne applies fn to the first item matching match. notFound is returned if there is none.
func (c collection[T]) updateOne(ctx context.Context, match func(T) bool, fn func(*T) error, notFound error) (T, error) {
	var updated T
	err := c.update(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if match(items[i]) {
				if err := fn(&items[i]); err != nil {
					return nil, err
				}
				updated = items[i]
				return items, nil
			}
		}
		return nil, notFound
	})
	return updated, err
}

// document is a single JSON object stored under a key.
type document[T any] struct {
	store core.KVStore
	key   string
}

// load returns notFound if the document was never written.
func (d document[T]) load(ctx context.Context, notFound error) (T, error) {
	var obj T
	data, err := d.store.Get(ctx, d.key)
	if err != nil {
		if core.IsNotFound(err) {
			return obj, notFound
		}
		return obj, errors.Wrapf(err, "loading %s", d.key)
	}
	if err = json.Unmarshal(data, &obj); err != nil {
		return obj, errors.Wrapf(err, "decoding %s", d.key)
	}
	return obj, nil
}

func (d document[T]) save(ctx context.Context, obj T) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", d.key)
	}
	return errors.Wrapf(d.store.Put(ctx, d.key, data), "saving %s", d.key)
}

// update applies fn to the document (zero valued if never written) and writes it back atomically.
func (d document[T]) update(ctx context.Context, fn func(*T) error) (T, error) {
	var obj T
	err := d.store.Update(ctx, d.key, func(data []byte) ([]byte, error) {
		if len(data) > 0 {
			if err := json.Unmarshal(data, &obj); err != nil {
				return nil, errors.Wrapf(err, "decoding %s", d.key)
			}
		}
		if err := fn(&obj); err != nil {
			return nil, err
		}
		return json.Marshal(obj)
	})
	return obj, err
}

// Purge deletes the PurgeableKeys collections.
func Purge(ctx context.Context, store core.KVStore) error {
	return errors.Wrap(store.Delete(ctx, PurgeableKeys...), "purging collections")
}
