package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/attendance"
)

type attendanceRepository struct {
	records collection[attendance.Record]
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(store core.KVStore) attendance.Repository {
	return &attendanceRepository{records: collection[attendance.Record]{store: store, key: KeyAttendance}}
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, date string) ([]attendance.Record, error) {
	records, err := repo.records.load(ctx)
	if err != nil || date == "" {
		return records, err
	}
	filtered := make([]attendance.Record, 0)
	for _, r := range records {
		if r.Date == date {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	err := repo.records.update(ctx, func(records []attendance.Record) ([]attendance.Record, error) {
		for i, r := range records {
			if r.StudentID == rec.StudentID && r.Date == rec.Date {
				rec.ID = r.ID
				records[i] = rec
				return records, nil
			}
		}
		rec.ID = core.NewID()
		return append(records, rec), nil
	})
	return rec, err
}
