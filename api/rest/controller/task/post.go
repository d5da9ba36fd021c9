package task

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/task"
	"github.com/opsdesk-cloud/opsdesk/internal/engine"
)

func Post(c echo.Context) error {
	actor, err := respond.Actor(c)
	if err != nil {
		return err
	}

	var req engine.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	tasks, err := task.Service(c.Request().Context()).Create(actor, &req)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusCreated, tasks)
}
