package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core/tutor"
	"github.com/trezcool/scola/core/user"
)

type tutorApi struct {
	auth *authenticator
	svc  *tutor.Service
}

func registerTutorAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *tutor.Service) {
	api := tutorApi{auth: auth, svc: svc}

	tg := g.Group("/tutors", jwt)
	tg.GET("", api.query)
	tg.GET("/recommended", api.recommend)
	tg.GET("/profile", api.profile, auth.roleMiddleware(user.RoleTutor))
	tg.PUT("/profile", api.saveProfile, auth.roleMiddleware(user.RoleTutor))
	tg.GET("/:id", api.retrieve)

	bg := tg.Group("/bookings")
	bg.GET("", api.queryBookings)
	bg.POST("", api.requestBooking, auth.roleMiddleware(user.RoleStudent, user.RoleParent))
	bg.POST("/:id/response", api.respond, auth.roleMiddleware(user.RoleTutor))
	bg.POST("/:id/reschedule", api.reschedule, auth.roleMiddleware(user.RoleTutor))
}

func (api *tutorApi) query(ctx echo.Context) error {
	var filter tutor.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []tutor.Tutor{})
	}
	tutors, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying tutors")
	}
	return ctx.JSON(http.StatusOK, tutors)
}

// recommend returns the best tutors for `?subject=Mathematics,Science`.
func (api *tutorApi) recommend(ctx echo.Context) error {
	var subjects []string
	for _, s := range strings.Split(ctx.QueryParam("subject"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	tutors, err := api.svc.Recommend(ctx.Request().Context(), subjects, tutor.MaxRecommendations)
	if err != nil {
		return errors.Wrap(err, "recommending tutors")
	}
	return ctx.JSON(http.StatusOK, tutors)
}

func (api *tutorApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tutorApi) profile(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.Profile(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tutorApi) saveProfile(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data tutor.Profile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Profile")
	}
	t, err := api.svc.SaveProfile(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tutorApi) queryBookings(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var filter tutor.BookingFilter
	if err = ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []tutor.Booking{})
	}
	bookings, err := api.svc.Bookings(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying bookings")
	}
	return ctx.JSON(http.StatusOK, bookings)
}

func (api *tutorApi) requestBooking(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data tutor.NewBooking
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBooking")
	}
	b, err := api.svc.RequestBooking(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *tutorApi) respond(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data tutor.Response
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Response")
	}
	b, err := api.svc.Respond(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *tutorApi) reschedule(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data tutor.Reschedule
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Reschedule")
	}
	b, err := api.svc.Reschedule(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, b)
}
