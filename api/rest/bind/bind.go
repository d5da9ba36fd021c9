package bind

import (
	"github.com/labstack/echo/v4"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/event"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/notification"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/receive"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/reference"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/task"
	"github.com/opsdesk-cloud/opsdesk/api/rest/controller/user"
)

func All(g *echo.Group) {
	// tasks
	{
		g.GET("/tasks", task.List)
		g.GET("/tasks/:id", task.Get)
		g.POST("/tasks", task.Post)
		g.POST("/tasks/:id/actions", task.Action)
		g.GET("/tasks/:id/actions", task.Actions)
		g.GET("/tasks/:id/history", task.History)
	}

	// receives
	{
		g.GET("/receives", receive.List)
		g.GET("/receives/:id", receive.Get)
		g.POST("/receives", receive.Post)
		g.GET("/receives/:id/tasks", receive.Tasks)
	}

	// notifications
	{
		g.GET("/notifications", notification.List)
		g.POST("/notifications/:id/read", notification.MarkRead)
	}

	// reference data
	{
		g.GET("/priorities", reference.Priorities)
		g.GET("/complexities", reference.Complexities)
		g.GET("/workcenters", reference.Workcenters)
	}

	// users
	{
		g.GET("/users", user.List)
		g.GET("/users/:id", user.Get)
	}

	// live event stream
	g.GET("/events", event.Stream)
}
