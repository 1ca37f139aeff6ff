package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

type (
	Repository interface {
		// QueryEvents returns the events dated from `from` to `to` (inclusive, YYYY-MM-DD). Empty bounds are open.
		QueryEvents(ctx context.Context, from, to string) ([]Event, error)
		CreateEvent(ctx context.Context, evt Event) (Event, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) AddEvent(ctx context.Context, creator user.User, ne NewEvent) (Event, error) {
	ne.Clean()
	if err := svc.validate.Struct(ne); err != nil {
		return Event{}, err
	}
	return svc.repo.CreateEvent(ctx, Event{
		Title:       ne.Title,
		Description: ne.Description,
		Date:        ne.Date,
		Time:        ne.Time,
		Type:        ne.Type,
		CreatedBy:   creator.Name,
		CreatedByID: creator.ID,
		CreatedAt:   core.Now(),
	})
}

// EventsForDate returns the events of date, ordered by time.
func (svc *Service) EventsForDate(ctx context.Context, date string) ([]Event, error) {
	if !core.IsISODate(date) {
		return nil, core.NewFieldError("date", "date must be in YYYY-MM-DD format")
	}
	events, err := svc.repo.QueryEvents(ctx, date, date)
	if err != nil {
		return nil, err
	}
	sortEvents(events)
	return events, nil
}

// Upcoming returns the events from today on, soonest first, up to limit.
func (svc *Service) Upcoming(ctx context.Context, limit int) ([]Event, error) {
	events, err := svc.repo.QueryEvents(ctx, core.Today(), "")
	if err != nil {
		return nil, err
	}
	sortEvents(events)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Month returns the grid of a month with its events.
func (svc *Service) Month(ctx context.Context, year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, core.NewFieldError("month", "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return Month{}, core.NewFieldError("year", "invalid year")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	events, err := svc.repo.QueryEvents(ctx, first.Format(core.DateLayout), last.Format(core.DateLayout))
	if err != nil {
		return Month{}, err
	}
	sortEvents(events)

	return BuildMonth(first, events), nil
}

// BuildMonth lays out the month of first with its events. Leading cells are nil.
func BuildMonth(first time.Time, events []Event) Month {
	byDate := make(map[string][]Event)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	m := Month{Year: first.Year(), Month: int(first.Month()), Name: first.Month().String()}
	offset := int(first.Weekday()) // Sunday == 0
	daysInMonth := first.AddDate(0, 1, -1).Day()
	m.Days = make([]*Day, offset, offset+daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC).Format(core.DateLayout)
		evts := byDate[date]
		if evts == nil {
			evts = make([]Event, 0)
		}
		m.Days = append(m.Days, &Day{Date: date, Day: d, Events: evts})
	}
	return m
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
}
