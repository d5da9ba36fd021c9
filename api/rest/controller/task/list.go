package task

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/task"
)

func List(c echo.Context) error {
	req, err := parseListRequest(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	tasks, err := task.Service(c.Request().Context()).List(req)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, tasks)
}

func parseListRequest(c echo.Context) (req *task.ListRequest, err error) {
	req = &task.ListRequest{
		Status:   c.QueryParam("status"),
		HolderID: c.QueryParam("holder_id"),
		Receive:  c.QueryParam("receive_id"),
	}

	if notice := c.QueryParam("is_notice"); notice != "" {
		value, err := strconv.ParseBool(notice)
		if err != nil {
			return nil, err
		}
		req.Notices = &value
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
