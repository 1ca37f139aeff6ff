package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/tutor"
)

type tutorRepository struct {
	tutors   collection[tutor.Tutor]
	bookings collection[tutor.Booking]
}

var _ tutor.Repository = (*tutorRepository)(nil)

func NewTutorRepository(store core.KVStore) tutor.Repository {
	return &tutorRepository{
		tutors:   collection[tutor.Tutor]{store: store, key: KeyTutors},
		bookings: collection[tutor.Booking]{store: store, key: KeyTutorBookings},
	}
}

func (repo *tutorRepository) QueryTutors(ctx context.Context) ([]tutor.Tutor, error) {
	return repo.tutors.load(ctx)
}

func (repo *tutorRepository) GetTutor(ctx context.Context, filter tutor.GetFilter) (tutor.Tutor, error) {
	tutors, err := repo.tutors.load(ctx)
	if err != nil {
		return tutor.Tutor{}, err
	}
	for _, t := range tutors {
		if (filter.ID != "" && t.ID == filter.ID) || (filter.ID == "" && filter.Email != "" && t.Email == filter.Email) {
			return t, nil
		}
	}
	return tutor.Tutor{}, tutor.ErrNotFound
}

func (repo *tutorRepository) SaveTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	if t.ID == "" {
		t.ID = core.NewID()
		err := repo.tutors.update(ctx, func(tutors []tutor.Tutor) ([]tutor.Tutor, error) {
			return append(tutors, t), nil
		})
		return t, err
	}
	return repo.tutors.updateOne(
		ctx,
		func(existing tutor.Tutor) bool { return existing.ID == t.ID },
		func(existing *tutor.Tutor) error {
			*existing = t
			return nil
		},
		tutor.ErrNotFound,
	)
}

func (repo *tutorRepository) QueryBookings(ctx context.Context, filter tutor.BookingFilter) ([]tutor.Booking, error) {
	bookings, err := repo.bookings.load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]tutor.Booking, 0, len(bookings))
	for _, b := range bookings {
		if filter.TutorEmail != "" && b.TutorEmail != filter.TutorEmail {
			continue
		}
		if filter.RequesterID != "" && b.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		filtered = append(filtered, b)
	}
	return filtered, nil
}

func (repo *tutorRepository) CreateBooking(ctx context.Context, b tutor.Booking) (tutor.Booking, error) {
	b.ID = core.NewID()
	err := repo.bookings.update(ctx, func(bookings []tutor.Booking) ([]tutor.Booking, error) {
		return append(bookings, b), nil
	})
	return b, err
}

func (repo *tutorRepository) UpdateBooking(ctx context.Context, id string, fn func(*tutor.Booking) error) (tutor.Booking, error) {
	return repo.bookings.updateOne(ctx, func(b tutor.Booking) bool { return b.ID == id }, fn, tutor.ErrBookingNotFound)
}
