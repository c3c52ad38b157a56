package app

import (
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/labstack/echo/v4"

	"github.com/stolasapp/whisper/internal/board"
	"github.com/stolasapp/whisper/internal/sec"
)

const statusSuccess = "success"

type statusResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	User    *board.User `json:"user,omitempty"`
	ID      uint64      `json:"id,omitempty,string"`
}

type handler struct {
	svc board.Service
}

func (h handler) register(e *echo.Echo, userAuth, adminAuth echo.MiddlewareFunc) {
	api := e.Group("/api")

	admin := api.Group("/admin", adminAuth)
	admin.POST("/login", h.adminLogin)
	admin.POST("/users", h.createUser)
	admin.POST("/create_user", h.createUser)

	api.GET("/messages", h.listMessages)
	api.POST("/messages", h.postMessage, userAuth)
}

func (h handler) adminLogin(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:  statusSuccess,
		Message: "Admin authenticated successfully.",
	})
}

func (h handler) createUser(c echo.Context) error {
	if _, ok := sec.GetOperator(c.Request().Context()); !ok {
		return connect.NewError(connect.CodePermissionDenied, errors.New("not authorized"))
	}

	var req board.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := h.svc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, statusResponse{
		Status:  statusSuccess,
		Message: "User created successfully by admin",
		User:    &user,
	})
}

func (h handler) postMessage(c echo.Context) error {
	var req board.PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	msg, err := h.svc.PostMessage(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, statusResponse{
		Status:  statusSuccess,
		Message: "Message posted successfully.",
		ID:      msg.ID,
	})
}

func (h handler) listMessages(c echo.Context) error {
	var (
		req    board.ListMessagesRequest
		format string
	)
	if err := echo.QueryParamsBinder(c).
		Int32("limit", &req.Limit).
		String("page_token", &req.PageToken).
		String("format", &format).
		BindError(); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, errors.New("invalid query parameters"))
	}
	switch format {
	case "", "text":
	case "html":
		req.HTML = true
	default:
		return connect.NewError(connect.CodeInvalidArgument, errors.New("format must be text or html"))
	}

	res, err := h.svc.ListMessages(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if res.NextPageToken != "" {
		c.Response().Header().Set(nextPageTokenHeader, res.NextPageToken)
	}
	return c.JSON(http.StatusOK, res.Messages)
}
