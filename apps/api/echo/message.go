package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core/message"
	"github.com/trezcool/scola/core/peerchat"
	"github.com/trezcool/scola/core/user"
)

type messageApi struct {
	auth *authenticator
	svc  *message.Service
}

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *message.Service) {
	api := messageApi{auth: auth, svc: svc}

	mg := g.Group("/messages", jwt)
	mg.GET("", api.queryConversations)
	mg.POST("", api.send)
	mg.GET("/unread", api.unreadCount)
	mg.GET("/:partnerID", api.thread)
	mg.POST("/:partnerID/read", api.markRead)
}

type CountResponse struct {
	Count int `json:"count"`
}

func (api *messageApi) queryConversations(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	convs, err := api.svc.Conversations(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying conversations")
	}
	return ctx.JSON(http.StatusOK, convs)
}

func (api *messageApi) send(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data message.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	msg, err := api.svc.Send(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) unreadCount(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	count, err := api.svc.UnreadCount(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "counting unread messages")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

func (api *messageApi) thread(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	msgs, err := api.svc.Thread(ctx.Request().Context(), usr, ctx.Param("partnerID"))
	if err != nil {
		return errors.Wrap(err, "querying thread")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) markRead(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	count, err := api.svc.MarkRead(ctx.Request().Context(), usr, ctx.Param("partnerID"))
	if err != nil {
		return errors.Wrap(err, "marking messages read")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

type peerChatApi struct {
	auth *authenticator
	svc  *peerchat.Service
}

func registerPeerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *peerchat.Service) {
	api := peerChatApi{auth: auth, svc: svc}

	cg := g.Group("/chat/groups", jwt, auth.roleMiddleware(user.RoleStudent))
	cg.GET("", api.queryGroups)
	cg.GET("/:id/messages", api.queryMessages)
	cg.POST("/:id/messages", api.post)
}

func (api *peerChatApi) queryGroups(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, peerchat.Groups)
}

func (api *peerChatApi) queryMessages(ctx echo.Context) error {
	msgs, err := api.svc.Messages(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *peerChatApi) post(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	var data peerchat.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	msg, err := api.svc.Post(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msg)
}
