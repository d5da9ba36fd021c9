package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFanOut(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleSupervisor, false)
	alice := f.user(t, "alice", models.RoleStaff, false)
	bob := f.user(t, "bob", models.RoleStaff, false)

	req := f.createRequest(alice.ID.String(), bob.ID.String(), "depot@example.mil")
	tasks, err := f.engine.Create(context.Background(), creator.ID, req)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	numbers := map[int64]bool{}
	for _, task := range tasks {
		assert.Equal(t, models.TaskStatusActive, task.Status)
		assert.False(t, numbers[task.RecordNumber], "record number %d reused", task.RecordNumber)
		numbers[task.RecordNumber] = true

		actions := f.actions(t, task.ID)
		require.Len(t, actions, 1)
		assert.Equal(t, models.ActionCreated, actions[0].Type)
		assert.Equal(t, creator.ID, actions[0].ActorID)

		histories := f.histories(t, task.ID)
		require.Len(t, histories, 1)
		assert.Equal(t, "TASK_CREATED", histories[0].Action)
	}

	require.NotNil(t, tasks[0].HolderID)
	assert.Equal(t, alice.ID, *tasks[0].HolderID)
	require.NotNil(t, tasks[1].HolderID)
	assert.Equal(t, bob.ID, *tasks[1].HolderID)
	assert.Nil(t, tasks[2].HolderID)
	assert.Equal(t, "depot@example.mil", tasks[2].ExternalEmail)

	assert.Len(t, f.dispatcher.assigned, 3)
}

func TestCreateExternalName(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleSupervisor, false)

	tasks, err := f.engine.Create(context.Background(), creator.ID, f.createRequest("Base Supply"))
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Nil(t, tasks[0].HolderID)
	assert.Equal(t, "BASE SUPPLY", tasks[0].ExternalName)
}

func TestCreateRequiresDescription(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleSupervisor, false)

	req := f.createRequest(creator.ID.String())
	req.Description = "   "

	_, err := f.engine.Create(context.Background(), creator.ID, req)
	assert.True(t, fault.IsValidation(err))
}

func TestCreateRequiresCompletionDate(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleSupervisor, false)

	req := f.createRequest(creator.ID.String())
	req.AssignedCompletionDate = nil

	_, err := f.engine.Create(context.Background(), creator.ID, req)
	assert.True(t, fault.IsValidation(err))
}

func TestCreateUnknownPriority(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleSupervisor, false)

	req := f.createRequest(creator.ID.String())
	req.PriorityID = uuid.New()

	_, err := f.engine.Create(context.Background(), creator.ID, req)
	assert.True(t, fault.IsNotFound(err))
}

func TestCreateUnknownActor(t *testing.T) {
	f := newFixture(t)
	staff := f.user(t, "staff", models.RoleStaff, false)

	_, err := f.engine.Create(context.Background(), uuid.New(), f.createRequest(staff.ID.String()))
	assert.True(t, fault.IsNotFound(err))
}

func TestCreateNoRecipients(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleSupervisor, false)

	// unknown internal ids are dropped, so nothing survives
	_, err := f.engine.Create(context.Background(), creator.ID, f.createRequest(uuid.New().String()))
	assert.True(t, fault.IsValidation(err))
}

func TestCreateNotice(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleDirector, false)
	alice := f.user(t, "alice", models.RoleStaff, false)
	bob := f.user(t, "bob", models.RoleStaff, false)

	req := f.createRequest(alice.ID.String(), bob.ID.String(), "depot@example.mil")
	req.IsNotice = true
	req.AssignedCompletionDate = nil

	tasks, err := f.engine.Create(context.Background(), creator.ID, req)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	notice := tasks[0]
	assert.True(t, notice.IsNotice)
	assert.Equal(t, models.TaskStatusClosed, notice.Status)
	assert.NotNil(t, notice.NoticeGroupID)
	assert.Equal(t, "depot@example.mil", notice.ExternalEmail)
	require.NotNil(t, notice.HolderID)
	assert.Equal(t, alice.ID, *notice.HolderID)

	assignments := make(models.TaskAssignments, 0)
	require.NoError(t, f.db.Where("task_id = ?", notice.ID).Find(&assignments).Error)
	assert.Len(t, assignments, 2)

	require.Len(t, f.dispatcher.notices, 1)
	assert.Len(t, f.dispatcher.notices[0], 3)
}

func TestCreateBroadcastExpandsOptIns(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleDirector, false)
	f.user(t, "alice", models.RoleStaff, true)
	f.user(t, "bob", models.RoleStaff, true)
	f.user(t, "carol", models.RoleStaff, false)

	tasks, err := f.engine.Create(context.Background(), creator.ID, f.createRequest(alias))
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCreateDedupesRecipients(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleSupervisor, false)
	alice := f.user(t, "alice", models.RoleStaff, false)

	req := f.createRequest(alice.ID.String(), alice.ID.String(), "Depot@Example.mil", "depot@example.mil")
	tasks, err := f.engine.Create(context.Background(), creator.ID, req)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCreateNoticeRecordsSingleAuditTrail(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleDirector, false)
	alice := f.user(t, "alice", models.RoleStaff, false)

	req := f.createRequest(alice.ID.String())
	req.IsNotice = true

	tasks, err := f.engine.Create(context.Background(), creator.ID, req)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Len(t, f.actions(t, tasks[0].ID), 1)
	assert.Len(t, f.histories(t, tasks[0].ID), 1)
}
