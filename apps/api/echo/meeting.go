package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core/meeting"
	"github.com/trezcool/scola/core/report"
	"github.com/trezcool/scola/core/user"
)

type meetingApi struct {
	auth *authenticator
	svc  *meeting.Service
}

func registerMeetingAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *meeting.Service) {
	api := meetingApi{auth: auth, svc: svc}

	mg := g.Group("/meetings", jwt)
	mg.GET("", api.query)
	mg.POST("", api.schedule, auth.roleMiddleware(user.RoleTeacher))
	mg.POST("/:id/accept", api.accept, auth.roleMiddleware(user.RoleParent))
}

func (api *meetingApi) query(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	meetings, err := api.svc.Query(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying meetings")
	}
	return ctx.JSON(http.StatusOK, meetings)
}

func (api *meetingApi) schedule(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data meeting.NewMeeting
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMeeting")
	}
	m, err := api.svc.Schedule(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *meetingApi) accept(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	m, err := api.svc.Accept(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

type reportApi struct {
	auth *authenticator
	svc  *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *report.Service) {
	api := reportApi{auth: auth, svc: svc}

	rg := g.Group("/reports", jwt)
	rg.GET("", api.query)
	rg.POST("", api.publish, auth.adminMiddleware())
}

// query returns the reports of `?grade=` (all grades by default).
func (api *reportApi) query(ctx echo.Context) error {
	reports, err := api.svc.Query(ctx.Request().Context(), gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *reportApi) publish(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data report.NewReport
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	r, err := api.svc.Publish(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, r)
}
