// Package report implements the report cards published by admins.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

const StatusReleased = "released"

type (
	Report struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Grade       string    `json:"grade"`
		Term        string    `json:"term"`
		Year        int       `json:"year"`
		Description string    `json:"description"`
		Status      string    `json:"status"`
		PublishedAt time.Time `json:"published_at"`
		PublishedBy string    `json:"published_by"`
	}

	NewReport struct {
		Title       string `json:"title" validate:"required,notblank"`
		Grade       string `json:"grade" validate:"required,grade"`
		Term        string `json:"term" validate:"required,term"`
		Year        int    `json:"year" validate:"min=2020,max=2030"`
		Description string `json:"description"`
	}

	Repository interface {
		QueryReports(ctx context.Context) ([]Report, error)
		CreateReport(ctx context.Context, r Report) (Report, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func (nr *NewReport) Clean() {
	nr.Title = core.CleanString(nr.Title)
	nr.Grade = core.CleanString(nr.Grade)
	nr.Term = core.CleanString(nr.Term)
	nr.Description = core.CleanString(nr.Description)
	if nr.Year == 0 {
		nr.Year = core.Now().Year()
	}
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Publish(ctx context.Context, admin user.User, nr NewReport) (Report, error) {
	nr.Clean()
	if err := svc.validate.Struct(nr); err != nil {
		return Report{}, err
	}
	return svc.repo.CreateReport(ctx, Report{
		Title:       nr.Title,
		Grade:       nr.Grade,
		Term:        nr.Term,
		Year:        nr.Year,
		Description: nr.Description,
		Status:      StatusReleased,
		PublishedAt: core.Now(),
		PublishedBy: admin.Name,
	})
}

// Query returns the reports of the given grades (every report if none), latest first.
func (svc *Service) Query(ctx context.Context, grades ...string) ([]Report, error) {
	all, err := svc.repo.QueryReports(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool)
	for _, g := range grades {
		if !core.IsAllGrades(g) {
			wanted[g] = true
		}
	}
	reports := make([]Report, 0, len(all))
	for _, r := range all {
		if len(wanted) == 0 || wanted[r.Grade] {
			reports = append(reports, r)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].PublishedAt.After(reports[j].PublishedAt) })
	return reports, nil
}

// PublishedCount returns the number of released reports.
func (svc *Service) PublishedCount(ctx context.Context) (int, error) {
	all, err := svc.repo.QueryReports(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range all {
		if r.Status == StatusReleased {
			count++
		}
	}
	return count, nil
}
