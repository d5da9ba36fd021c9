package task

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/task"
)

func Get(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}

	t, err := task.Service(c.Request().Context()).Get(id)

	switch {
	case err != nil:
		return respond.Error(err)
	case t == nil:
		return echo.ErrNotFound
	default:
		return c.JSON(http.StatusOK, t)
	}
}
