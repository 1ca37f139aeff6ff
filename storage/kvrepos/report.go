package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/report"
)

type reportRepository struct {
	reports collection[report.Report]
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(store core.KVStore) report.Repository {
	return &reportRepository{reports: collection[report.Report]{store: store, key: KeyReports}}
}

func (repo *reportRepository) QueryReports(ctx context.Context) ([]report.Report, error) {
	return repo.reports.load(ctx)
}

func (repo *reportRepository) CreateReport(ctx context.Context, r report.Report) (report.Report, error) {
	r.ID = core.NewID()
	err := repo.reports.update(ctx, func(items []report.Report) ([]report.Report, error) {
		return append(items, r), nil
	})
	return r, err
}
