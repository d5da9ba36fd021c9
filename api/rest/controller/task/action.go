package task

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/task"
)

func Action(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}

	actor, err := respond.Actor(c)
	if err != nil {
		return err
	}

	var req task.ActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	t, err := task.Service(c.Request().Context()).Apply(id, actor, &req)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, t)
}
