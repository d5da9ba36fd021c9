// Package engine implements the task lifecycle and routing engine:
// task creation (standard fan-out and notice broadcast) and the
// action state machine governing submit, forward, close, revert,
// acknowledge and reject.
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/assignee"
	"github.com/opsdesk-cloud/opsdesk/internal/event"
	"github.com/opsdesk-cloud/opsdesk/internal/notify"
	"github.com/opsdesk-cloud/opsdesk/internal/sequence"
	"gorm.io/gorm"
)

type Engine struct {
	db         *gorm.DB
	resolver   *assignee.Resolver
	allocator  *sequence.Allocator
	dispatcher notify.Dispatcher
	bus        event.Bus
}

// New wires the engine to its collaborators. The bus may be nil when
// no live subscribers are needed (tests, one-shot tools).
func New(conn *gorm.DB, resolver *assignee.Resolver, allocator *sequence.Allocator, dispatcher notify.Dispatcher, bus event.Bus) *Engine {
	return &Engine{
		db:         conn,
		resolver:   resolver,
		allocator:  allocator,
		dispatcher: dispatcher,
		bus:        bus,
	}
}

func (e *Engine) publish(t event.Type, taskID, actorID uuid.UUID) {
	if e.bus == nil {
		return
	}

	e.bus.Publish(event.Event{
		Type:      t,
		TaskID:    taskID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	})
}
