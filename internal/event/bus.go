package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type represents the type of event.
type Type string

const (
	TypeTaskCreated      Type = "task_created"
	TypeNoticePublished  Type = "notice_published"
	TypeTaskSubmitted    Type = "task_submitted"
	TypeTaskForwarded    Type = "task_forwarded"
	TypeTaskClosed       Type = "task_closed"
	TypeTaskReverted     Type = "task_reverted"
	TypeTaskAcknowledged Type = "task_acknowledged"
	TypeTaskRejected     Type = "task_rejected"
)

// Event represents a task lifecycle event.
type Event struct {
	Type      Type            `json:"type"`
	TaskID    uuid.UUID       `json:"task_id,omitempty"`
	ActorID   uuid.UUID       `json:"actor_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Filter defines criteria for receiving events.
type Filter struct {
	TaskID  uuid.UUID
	ActorID uuid.UUID
	Types   []Type
}

// Bus defines the event bus interface.
type Bus interface {
	Publish(e Event)
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, error)
}

type bus struct {
	subscribers map[chan Event]Filter
	mu          sync.RWMutex
}

// New creates a new event bus.
func New() Bus {
	return &bus{
		subscribers: make(map[chan Event]Filter),
	}
}

var defaultBus = New()

// Default returns the process-wide bus shared by the engine and the
// streaming API.
func Default() Bus {
	return defaultBus
}

func (b *bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, filter := range b.subscribers {
		if b.matches(filter, e) {
			select {
			case ch <- e:
			default:
				// Drop event if channel is full to prevent blocking
			}
		}
	}
}

func (b *bus) Subscribe(ctx context.Context, filter Filter) (<-chan Event, error) {
	ch := make(chan Event, 100)

	b.mu.Lock()
	b.subscribers[ch] = filter
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subscribers, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

func (b *bus) matches(filter Filter, e Event) bool {
	if filter.TaskID != uuid.Nil && filter.TaskID != e.TaskID {
		return false
	}
	if filter.ActorID != uuid.Nil && filter.ActorID != e.ActorID {
		return false
	}
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if t == e.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
