package api

import (
	"context"
	"fmt"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/bind"
	"github.com/opsdesk-cloud/opsdesk/pkg/env"
)

var server *echo.Echo

// Start launches opsdesk's API.
func Start() error {
	server = echo.New()
	server.HideBanner = true
	server.HidePort = true

	// health
	server.GET("/health", Health)

	// metrics
	prometheus.NewPrometheus("opsdesk", nil).Use(server)

	// REST
	bind.All(server.Group("/v1"))

	return server.Start(fmt.Sprintf(":%v", env.Variables().Port))
}

// Shutdown gracefully stops the API.
func Shutdown(ctx context.Context) error {
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
