package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/performance"
)

type performanceRepository struct {
	records collection[performance.Record]
}

var _ performance.Repository = (*performanceRepository)(nil)

func NewPerformanceRepository(store core.KVStore) performance.Repository {
	return &performanceRepository{records: collection[performance.Record]{store: store, key: KeyPerformanceData}}
}

func (repo *performanceRepository) AddRecords(ctx context.Context, recs []performance.Record) error {
	return repo.records.update(ctx, func(existing []performance.Record) ([]performance.Record, error) {
		for _, rec := range recs {
			rec.ID = core.NewID()
			existing = append(existing, rec)
		}
		return existing, nil
	})
}

func (repo *performanceRepository) QueryRecords(ctx context.Context, grade string) ([]performance.Record, error) {
	records, err := repo.records.load(ctx)
	if err != nil {
		return nil, err
	}
	return performance.FilterByGrade(records, grade), nil
}
