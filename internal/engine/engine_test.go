package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/assignee"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/internal/sequence"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const alias = "all-staff"

type fakeDispatcher struct {
	assigned  []assignee.Assignee
	forwarded []assignee.Assignee
	rejected  []*models.User
	notices   [][]assignee.Assignee
	pending   []models.Users
}

func (f *fakeDispatcher) NotifyAssigned(_ context.Context, _ *models.Task, recipient assignee.Assignee) {
	f.assigned = append(f.assigned, recipient)
}

func (f *fakeDispatcher) NotifyForwarded(_ context.Context, _ *models.Task, recipient assignee.Assignee) {
	f.forwarded = append(f.forwarded, recipient)
}

func (f *fakeDispatcher) NotifyRejected(_ context.Context, _ *models.Task, recipient *models.User, _ string) {
	f.rejected = append(f.rejected, recipient)
}

func (f *fakeDispatcher) NotifyNotice(_ context.Context, _ *models.Task, recipients []assignee.Assignee) {
	f.notices = append(f.notices, recipients)
}

func (f *fakeDispatcher) NotifyPendingAcknowledgment(_ context.Context, _ *models.Task, leadership models.Users) {
	f.pending = append(f.pending, leadership)
}

type fixture struct {
	db         *gorm.DB
	engine     *Engine
	dispatcher *fakeDispatcher
	priority   *models.Priority
	complexity *models.Complexity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Priority{},
		&models.Complexity{},
		&models.Workcenter{},
		&models.Receive{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskAction{},
		&models.TaskHistory{},
		&models.Notification{},
		&models.RecordCounter{},
	))

	priority := &models.Priority{ID: uuid.New(), Name: "P1", Rank: 1}
	complexity := &models.Complexity{ID: uuid.New(), Name: "C1", Rank: 1}
	require.NoError(t, db.Create(priority).Error)
	require.NoError(t, db.Create(complexity).Error)

	dispatcher := &fakeDispatcher{}
	eng := New(db, assignee.NewResolver(db, alias), sequence.NewAllocator(db), dispatcher, nil)

	return &fixture{
		db:         db,
		engine:     eng,
		dispatcher: dispatcher,
		priority:   priority,
		complexity: complexity,
	}
}

func (f *fixture) user(t *testing.T, name string, role models.Role, optIn bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:             uuid.New(),
		Name:           name,
		Email:          name + "@example.mil",
		Role:           role,
		BroadcastOptIn: optIn,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) createRequest(tokens ...string) *CreateRequest {
	due := time.Now().UTC().Add(72 * time.Hour)
	return &CreateRequest{
		AssigneeTokens:         tokens,
		Description:            "inventory audit",
		PriorityID:             f.priority.ID,
		ComplexityID:           f.complexity.ID,
		AssignedCompletionDate: &due,
	}
}

func (f *fixture) actions(t *testing.T, taskID uuid.UUID) models.TaskActions {
	t.Helper()
	actions := make(models.TaskActions, 0)
	require.NoError(t, f.db.Where("task_id = ?", taskID).Order("created_at asc").Find(&actions).Error)
	return actions
}

func (f *fixture) histories(t *testing.T, taskID uuid.UUID) models.TaskHistories {
	t.Helper()
	histories := make(models.TaskHistories, 0)
	require.NoError(t, f.db.Where("task_id = ?", taskID).Order("created_at asc").Find(&histories).Error)
	return histories
}

func (f *fixture) reload(t *testing.T, taskID uuid.UUID) *models.Task {
	t.Helper()
	task := new(models.Task)
	require.NoError(t, f.db.First(task, "id = ?", taskID).Error)
	return task
}
