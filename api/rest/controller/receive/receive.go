package receive

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/receive"
)

func List(c echo.Context) error {
	req, err := parseListRequest(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	receives, err := receive.Service(c.Request().Context()).List(req)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, receives)
}

func Get(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}

	r, err := receive.Service(c.Request().Context()).Get(id)

	switch {
	case err != nil:
		return respond.Error(err)
	case r == nil:
		return echo.ErrNotFound
	default:
		return c.JSON(http.StatusOK, r)
	}
}

func Post(c echo.Context) error {
	actor, err := respond.Actor(c)
	if err != nil {
		return err
	}

	var req receive.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	r, err := receive.Service(c.Request().Context()).Create(actor, &req)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusCreated, r)
}

// Tasks lists the tasks dispatched in response to the receive.
func Tasks(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}

	tasks, err := receive.Service(c.Request().Context()).Tasks(id)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, tasks)
}

func parseListRequest(c echo.Context) (req *receive.ListRequest, err error) {
	req = &receive.ListRequest{
		Sender: c.QueryParam("sender"),
	}

	if limit := c.QueryParam("limit"); limit != "" {
		if req.Limit, err = strconv.ParseUint(limit, 10, 32); err != nil {
			return nil, err
		}
	}

	if offset := c.QueryParam("offset"); offset != "" {
		if req.Offset, err = strconv.ParseUint(offset, 10, 64); err != nil {
			return nil, err
		}
	}

	if orderBy := c.QueryParam("order_by"); orderBy != "" {
		req.OrderBy = strings.Split(orderBy, ",")
	}

	return
}
