package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/calendar"
)

type calendarApi struct {
	auth *authenticator
	svc  *calendar.Service
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *calendar.Service) {
	api := calendarApi{auth: auth, svc: svc}

	cg := g.Group("/calendar", jwt)
	cg.GET("/types", api.queryTypes)
	cg.GET("/events", api.queryEvents)
	cg.GET("/upcoming", api.queryUpcoming)
	cg.GET("/months/:year/:month", api.month)
	cg.POST("/events", api.create)
}

func (api *calendarApi) queryTypes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, calendar.EventTypes)
}

func (api *calendarApi) queryEvents(ctx echo.Context) error {
	events, err := api.svc.EventsForDate(ctx.Request().Context(), dateFilter(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *calendarApi) queryUpcoming(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	events, err := api.svc.Upcoming(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying upcoming events")
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *calendarApi) month(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return core.NewFieldError("year", "invalid year")
	}
	month, err := strconv.Atoi(ctx.Param("month"))
	if err != nil {
		return core.NewFieldError("month", "month must be between 1 and 12")
	}
	m, err := api.svc.Month(ctx.Request().Context(), year, month)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *calendarApi) create(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data calendar.NewEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	evt, err := api.svc.AddEvent(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, evt)
}
