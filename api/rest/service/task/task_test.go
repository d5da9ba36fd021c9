package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/engine"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.MigrateWith(conn))
	return conn
}

func seed(t *testing.T, conn *gorm.DB) (*models.User, *models.User, *engine.CreateRequest) {
	t.Helper()

	director := &models.User{ID: uuid.New(), Name: "director", Email: "director@example.mil", Role: models.RoleDirector}
	staff := &models.User{ID: uuid.New(), Name: "staff", Email: "staff@example.mil", Role: models.RoleStaff}
	priority := &models.Priority{ID: uuid.New(), Name: "P1", Rank: 1}
	complexity := &models.Complexity{ID: uuid.New(), Name: "C1", Rank: 1}

	for _, row := range []interface{}{director, staff, priority, complexity} {
		require.NoError(t, conn.Create(row).Error)
	}

	due := time.Now().UTC().Add(48 * time.Hour)
	req := &engine.CreateRequest{
		AssigneeTokens:         []string{staff.ID.String()},
		Description:            "review incoming correspondence",
		PriorityID:             priority.ID,
		ComplexityID:           complexity.ID,
		AssignedCompletionDate: &due,
	}

	return director, staff, req
}

func TestCreateAndGet(t *testing.T) {
	conn := openTestDB(t)
	svc := &taskService{ctx: context.Background(), db: conn}
	director, staff, req := seed(t, conn)

	tasks, err := svc.Create(director.ID, req)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got, err := svc.Get(tasks[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tasks[0].RecordNumber, got.RecordNumber)
	require.NotNil(t, got.Holder)
	assert.Equal(t, staff.ID, got.Holder.ID)
	require.NotNil(t, got.Priority)
}

func TestGetMissingReturnsNil(t *testing.T) {
	conn := openTestDB(t)
	svc := &taskService{ctx: context.Background(), db: conn}

	got, err := svc.Get(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFilters(t *testing.T) {
	conn := openTestDB(t)
	svc := &taskService{ctx: context.Background(), db: conn}
	director, staff, req := seed(t, conn)

	_, err := svc.Create(director.ID, req)
	require.NoError(t, err)

	byStatus, err := svc.List(&ListRequest{Status: string(models.TaskStatusActive)})
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	byHolder, err := svc.List(&ListRequest{HolderID: staff.ID.String()})
	require.NoError(t, err)
	assert.Len(t, byHolder, 1)

	closed, err := svc.List(&ListRequest{Status: string(models.TaskStatusClosed)})
	require.NoError(t, err)
	assert.Empty(t, closed)

	_, err = svc.List(&ListRequest{HolderID: "not-a-uuid"})
	assert.True(t, fault.IsValidation(err))
}

func TestApplyDrivesLifecycle(t *testing.T) {
	conn := openTestDB(t)
	svc := &taskService{ctx: context.Background(), db: conn}
	director, staff, req := seed(t, conn)

	tasks, err := svc.Create(director.ID, req)
	require.NoError(t, err)
	id := tasks[0].ID

	updated, err := svc.Apply(id, staff.ID, &ActionRequest{
		Type:            string(models.ActionSubmitted),
		ReferenceNumber: "REF-7",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)

	actions, err := svc.Actions(id)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, models.ActionSubmitted, actions[1].Type)
	require.NotNil(t, actions[1].Actor)
	assert.Equal(t, staff.ID, actions[1].Actor.ID)

	histories, err := svc.History(id)
	require.NoError(t, err)
	assert.Len(t, histories, 2)
}

func TestActionRequestPayloadMapping(t *testing.T) {
	to := uuid.New()

	for _, tc := range []struct {
		req  ActionRequest
		want models.ActionType
	}{
		{ActionRequest{Type: "submitted", ReferenceNumber: "R-1"}, models.ActionSubmitted},
		{ActionRequest{Type: "forwarded", ToUserID: &to}, models.ActionForwarded},
		{ActionRequest{Type: "closed"}, models.ActionClosed},
		{ActionRequest{Type: "reverted"}, models.ActionReverted},
		{ActionRequest{Type: "acknowledged"}, models.ActionAcknowledged},
		{ActionRequest{Type: "rejected", Reason: "rework"}, models.ActionRejected},
	} {
		payload, err := tc.req.Payload()
		require.NoError(t, err)
		assert.Equal(t, tc.want, payload.ActionType())
	}

	_, err := (&ActionRequest{Type: "escalated"}).Payload()
	assert.True(t, fault.IsValidation(err))
}
