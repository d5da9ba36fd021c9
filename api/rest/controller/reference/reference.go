package reference

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/respond"
	"github.com/opsdesk-cloud/opsdesk/api/rest/service/reference"
)

func Priorities(c echo.Context) error {
	rows, err := reference.Service(c.Request().Context()).Priorities()
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, rows)
}

func Complexities(c echo.Context) error {
	rows, err := reference.Service(c.Request().Context()).Complexities()
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, rows)
}

func Workcenters(c echo.Context) error {
	rows, err := reference.Service(c.Request().Context()).Workcenters()
	if err != nil {
		return respond.Error(err)
	}

	return c.JSON(http.StatusOK, rows)
}
