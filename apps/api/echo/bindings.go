package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/scola/core"
)

const (
	orderingParam = "ordering"
	gradeParam    = "grade"
	dateParam     = "date"
	formatParam   = "format"
)

// bindOrdering parses `?ordering=name,-created_at`.
func bindOrdering(ctx echo.Context) []core.Ordering {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}

	var orderings []core.Ordering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			orderings = append(orderings, core.Ordering{Field: field, Ascending: !descending})
		}
	}
	return orderings
}

// gradeFilter returns `?grade=`, defaulting to every grade.
func gradeFilter(ctx echo.Context) string {
	if grade := strings.TrimSpace(ctx.QueryParam(gradeParam)); grade != "" {
		return grade
	}
	return core.AllGrades
}

// dateFilter returns `?date=`, defaulting to today.
func dateFilter(ctx echo.Context) string {
	if date := strings.TrimSpace(ctx.QueryParam(dateParam)); date != "" {
		return date
	}
	return core.Today()
}

func wantsPNG(ctx echo.Context) bool {
	return strings.EqualFold(ctx.QueryParam(formatParam), "png")
}
