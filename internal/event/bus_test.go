package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesMatchingSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	taskID := uuid.New()

	ch, err := b.Subscribe(ctx, Filter{TaskID: taskID})
	require.NoError(t, err)

	b.Publish(Event{Type: TypeTaskSubmitted, TaskID: taskID, Timestamp: time.Now().UTC()})
	b.Publish(Event{Type: TypeTaskSubmitted, TaskID: uuid.New(), Timestamp: time.Now().UTC()})

	select {
	case e := <-ch:
		require.Equal(t, taskID, e.TaskID)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	select {
	case e := <-ch:
		t.Fatalf("unexpected event for task %s", e.TaskID)
	default:
	}
}

func TestSubscribeFiltersByType(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	ch, err := b.Subscribe(ctx, Filter{Types: []Type{TypeTaskAcknowledged}})
	require.NoError(t, err)

	b.Publish(Event{Type: TypeTaskCreated, TaskID: uuid.New()})
	b.Publish(Event{Type: TypeTaskAcknowledged, TaskID: uuid.New()})

	select {
	case e := <-ch:
		require.Equal(t, TypeTaskAcknowledged, e.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}
}

func TestSubscriberClosedOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	b := New()
	ch, err := b.Subscribe(ctx, Filter{})
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected channel close")
	}
}
