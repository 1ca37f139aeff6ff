package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/attendance"
	"github.com/trezcool/scola/core/user"
)

type attendanceApi struct {
	auth *authenticator
	svc  *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *attendance.Service) {
	api := attendanceApi{auth: auth, svc: svc}

	ag := g.Group("/attendance", jwt, auth.roleMiddleware(user.RoleTeacher, user.RoleAdmin))
	ag.GET("", api.query)
	ag.POST("", api.mark)
	ag.GET("/roster", api.roster)
	ag.GET("/stats", api.stats)
	ag.GET("/export", api.export)
}

func (api *attendanceApi) validDate(ctx echo.Context) (string, error) {
	date := dateFilter(ctx)
	if !core.IsISODate(date) {
		return "", core.NewFieldError("date", "date must be in YYYY-MM-DD format")
	}
	return date, nil
}

func (api *attendanceApi) query(ctx echo.Context) error {
	date, err := api.validDate(ctx)
	if err != nil {
		return err
	}
	records, err := api.svc.ForDate(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data attendance.Mark
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Mark")
	}
	rec, err := api.svc.Mark(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) roster(ctx echo.Context) error {
	date, err := api.validDate(ctx)
	if err != nil {
		return err
	}
	roster, err := api.svc.Roster(ctx.Request().Context(), date, gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "building roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *attendanceApi) stats(ctx echo.Context) error {
	date, err := api.validDate(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), date, gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "calculating attendance stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) export(ctx echo.Context) error {
	date, err := api.validDate(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = api.svc.ExportCSV(ctx.Request().Context(), date, &buf); err != nil {
		return errors.Wrap(err, "exporting attendance")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+attendance.ExportFilename(date)+`"`)
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
