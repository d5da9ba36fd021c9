package notification

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/notification"
)

// List returns the acting user's notifications, newest first.
func List(c echo.Context) error {
	actor, err := respond.Actor(c)
	if err != nil {
		return err
	}

	req := &notification.ListRequest{UserID: actor.String()}

	if unread := c.QueryParam("unread"); unread != "" {
		if req.Unread, err = strconv.ParseBool(unread); err != nil {
			return echo.ErrBadRequest.SetInternal(err)
		}
	}

	if limit := c.QueryParam("limit"); limit != "" {
		if req.Limit, err = strconv.ParseUint(limit, 10, 32); err != nil {
			return echo.ErrBadRequest.SetInternal(err)
		}
	}

	if offset := c.QueryParam("offset"); offset != "" {
		if req.Offset, err = strconv.ParseUint(offset, 10, 64); err != nil {
			return echo.ErrBadRequest.SetInternal(err)
		}
	}

	rows, err := notification.Service(c.Request().Context()).List(req)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, rows)
}

// MarkRead flags one of the acting user's notifications as read.
func MarkRead(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}

	actor, err := respond.Actor(c)
	if err != nil {
		return err
	}

	row, err := notification.Service(c.Request().Context()).MarkRead(id, actor)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, row)
}
