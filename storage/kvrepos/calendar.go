package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/calendar"
)

type calendarRepository struct {
	events collection[calendar.Event]
}

var _ calendar.Repository = (*calendarRepository)(nil)

func NewCalendarRepository(store core.KVStore) calendar.Repository {
	return &calendarRepository{events: collection[calendar.Event]{store: store, key: KeyCalendarEvents}}
}

func (repo *calendarRepository) QueryEvents(ctx context.Context, from, to string) ([]calendar.Event, error) {
	events, err := repo.events.load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]calendar.Event, 0, len(events))
	for _, e := range events {
		if (from == "" || e.Date >= from) && (to == "" || e.Date <= to) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (repo *calendarRepository) CreateEvent(ctx context.Context, evt calendar.Event) (calendar.Event, error) {
	evt.ID = core.NewID()
	err := repo.events.update(ctx, func(events []calendar.Event) ([]calendar.Event, error) {
		return append(events, evt), nil
	})
	return evt, err
}
