package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/scola/core/dashboard"
)

type dashboardApi struct {
	auth *authenticator
	svc  *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *dashboard.Service) {
	api := dashboardApi{auth: auth, svc: svc}
	g.GET("/dashboard", api.retrieve, jwt)
}

func (api *dashboardApi) retrieve(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.Get(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}
