package user

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/user"
)

func List(c echo.Context) error {
	req, err := parseListRequest(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	users, err := user.Service(c.Request().Context()).List(req)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, users)
}

func Get(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}

	u, err := user.Service(c.Request().Context()).Get(id)

	switch {
	case err != nil:
		return respond.Error(err)
	case u == nil:
		return echo.ErrNotFound
	default:
		return c.JSON(http.StatusOK, u)
	}
}

func parseListRequest(c echo.Context) (req *user.ListRequest, err error) {
	req = &user.ListRequest{
		Role: c.QueryParam("role"),
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
