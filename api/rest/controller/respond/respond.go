// Package respond maps engine failures and request identity onto the
// HTTP surface.
package respond

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
)

// ActorHeader names the request header carrying the acting user's id.
// Authentication happens upstream; the API trusts the header.
const ActorHeader = "X-Actor-ID"

// Actor extracts the acting user's id from the request.
func Actor(c echo.Context) (uuid.UUID, error) {
	raw := c.Request().Header.Get(ActorHeader)
	if raw == "" {
		return uuid.Nil, echo.NewHTTPError(400, "missing "+ActorHeader+" header")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.ErrBadRequest.SetInternal(err)
	}

	return id, nil
}

// Error converts a service failure into the matching HTTP error.
func Error(err error) error {
	switch fault.KindOf(err) {
	case fault.KindValidation:
		return echo.NewHTTPError(400, err.Error())
	case fault.KindPermission:
		return echo.NewHTTPError(403, err.Error())
	case fault.KindNotFound:
		return echo.NewHTTPError(404, err.Error())
	default:
		return echo.ErrInternalServerError.SetInternal(err)
	}
}

// ID parses the named path parameter as a UUID.
func ID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.ErrBadRequest.SetInternal(err)
	}
	return id, nil
}
