package task

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/task"
)

// Actions returns the append-only action log of a task.
func Actions(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}

	actions, err := task.Service(c.Request().Context()).Actions(id)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, actions)
}

// History returns the field-level diff snapshots of a task.
func History(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}

	histories, err := task.Service(c.Request().Context()).History(id)
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, histories)
}
