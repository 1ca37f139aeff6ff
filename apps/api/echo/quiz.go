package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core/quiz"
	"github.com/trezcool/scola/core/user"
)

type quizApi struct {
	auth *authenticator
	svc  *quiz.Service
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *quiz.Service) {
	api := quizApi{auth: auth, svc: svc}

	qg := g.Group("/quiz", jwt)
	qg.GET("/subjects", api.querySubjects)
	qg.GET("/leaderboard", api.leaderboard)

	sg := qg.Group("", auth.roleMiddleware(user.RoleStudent))
	sg.GET("/stats", api.stats)
	sg.POST("/start", api.start)
	sg.GET("/current", api.current)
	sg.POST("/answer", api.answer)
}

type StartQuizRequest struct {
	Subject string `json:"subject"`
}

func (api *quizApi) querySubjects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, quiz.Subjects)
}

func (api *quizApi) leaderboard(ctx echo.Context) error {
	board, err := api.svc.Leaderboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building leaderboard")
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *quizApi) stats(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "loading quiz stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *quizApi) start(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data StartQuizRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartQuizRequest")
	}
	sess, err := api.svc.Start(ctx.Request().Context(), usr, data.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *quizApi) current(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.Current(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *quizApi) answer(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data quiz.Answer
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Answer")
	}
	res, err := api.svc.Answer(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
