package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/assignee"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createFor creates a single task held by the given user and returns
// its fresh row.
func (f *fixture) createFor(t *testing.T, creator, holder *models.User) *models.Task {
	t.Helper()
	tasks, err := f.engine.Create(context.Background(), creator.ID, f.createRequest(holder.ID.String()))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	return tasks[0]
}

func TestSubmitByHolder(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, lead, staff)

	updated, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Submit{
		ReferenceNumber: "REF-42",
		Description:     "done, see reference",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)

	actions := f.actions(t, task.ID)
	require.Len(t, actions, 2)
	assert.Equal(t, models.ActionSubmitted, actions[1].Type)
	assert.Equal(t, "REF-42", actions[1].ReferenceNumber)

	require.Len(t, f.dispatcher.pending, 1)
	require.Len(t, f.dispatcher.pending[0], 1)
	assert.Equal(t, lead.ID, f.dispatcher.pending[0][0].ID)
}

func TestSubmitByNonHolder(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	other := f.user(t, "other", models.RoleStaff, false)
	task := f.createFor(t, lead, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, other.ID, Submit{})
	assert.True(t, fault.IsValidation(err))

	assert.Equal(t, models.TaskStatusActive, f.reload(t, task.ID).Status)
	assert.Len(t, f.actions(t, task.ID), 1, "failed action must not be recorded")
}

func TestForwardToInternalUser(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	next := f.user(t, "next", models.RoleStaff, false)
	task := f.createFor(t, lead, staff)

	updated, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Forward{
		ToUserID:    &next.ID,
		Description: "your workcenter owns this",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.HolderID)
	assert.Equal(t, next.ID, *updated.HolderID)
	assert.Empty(t, updated.ExternalEmail)
	assert.Empty(t, updated.ExternalName)

	actions := f.actions(t, task.ID)
	require.Len(t, actions, 2)
	require.NotNil(t, actions[1].ForwardedToID)
	assert.Equal(t, next.ID, *actions[1].ForwardedToID)

	require.Len(t, f.dispatcher.forwarded, 1)
	assert.Equal(t, assignee.KindInternal, f.dispatcher.forwarded[0].Kind)
	assert.Equal(t, next.ID, f.dispatcher.forwarded[0].UserID)
}

func TestForwardToExternalEmail(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, lead, staff)

	updated, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Forward{
		ToEmail: " Depot@Example.MIL ",
	})
	require.NoError(t, err)
	assert.Nil(t, updated.HolderID)
	assert.Equal(t, "depot@example.mil", updated.ExternalEmail)
}

func TestForwardRequiresExactlyOneTarget(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, lead, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Forward{})
	assert.True(t, fault.IsValidation(err))

	_, err = f.engine.Apply(context.Background(), task.ID, staff.ID, Forward{
		ToUserID: &lead.ID,
		ToEmail:  "depot@example.mil",
	})
	assert.True(t, fault.IsValidation(err))
}

func TestForwardBlockedWhileAwaitingAcknowledgment(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, lead, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Submit{})
	require.NoError(t, err)

	_, err = f.engine.Apply(context.Background(), task.ID, staff.ID, Forward{ToUserID: &lead.ID})
	assert.True(t, fault.IsValidation(err))
}

func TestCloseRequiresLeadership(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, lead, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Close{})
	assert.True(t, fault.IsPermission(err))

	updated, err := f.engine.Apply(context.Background(), task.ID, lead.ID, Close{Description: "overtaken by events"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusClosed, updated.Status)
}

func TestClosedIsTerminal(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleDirector, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, lead, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, lead.ID, Close{})
	require.NoError(t, err)

	for _, payload := range []Payload{
		Submit{},
		Forward{ToUserID: &staff.ID},
		Close{},
		Revert{},
		Acknowledge{},
		Reject{Reason: "nope"},
	} {
		_, err := f.engine.Apply(context.Background(), task.ID, lead.ID, payload)
		assert.Truef(t, fault.IsValidation(err), "%T against a closed task must fail validation", payload)
	}
}

func TestRevertRequiresGrant(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	granted := f.user(t, "granted", models.RoleSupervisor, false)
	granted.CanRevert = true
	require.NoError(t, f.db.Save(granted).Error)

	task := f.createFor(t, lead, staff)
	_, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Submit{})
	require.NoError(t, err)

	_, err = f.engine.Apply(context.Background(), task.ID, lead.ID, Revert{})
	assert.True(t, fault.IsPermission(err))

	updated, err := f.engine.Apply(context.Background(), task.ID, granted.ID, Revert{Description: "rework needed"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusActive, updated.Status)
}

func TestRevertClearsAcknowledger(t *testing.T) {
	f := newFixture(t)
	director := f.user(t, "director", models.RoleDirector, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, director, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Submit{})
	require.NoError(t, err)
	_, err = f.engine.Apply(context.Background(), task.ID, director.ID, Acknowledge{})
	require.NoError(t, err)

	updated, err := f.engine.Apply(context.Background(), task.ID, director.ID, Revert{})
	require.NoError(t, err)
	assert.Nil(t, updated.AcknowledgedByID)
	assert.Nil(t, updated.AcknowledgedAt)
}

func TestAcknowledgeLifecycle(t *testing.T) {
	f := newFixture(t)
	director := f.user(t, "director", models.RoleDirector, false)
	supervisor := f.user(t, "supervisor", models.RoleSupervisor, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, director, staff)

	// not completed yet
	_, err := f.engine.Apply(context.Background(), task.ID, director.ID, Acknowledge{})
	assert.True(t, fault.IsValidation(err))

	_, err = f.engine.Apply(context.Background(), task.ID, staff.ID, Submit{})
	require.NoError(t, err)

	// completed, but supervisors hold no acknowledge grant by default
	_, err = f.engine.Apply(context.Background(), task.ID, supervisor.ID, Acknowledge{})
	assert.True(t, fault.IsPermission(err))

	updated, err := f.engine.Apply(context.Background(), task.ID, director.ID, Acknowledge{})
	require.NoError(t, err)
	require.NotNil(t, updated.AcknowledgedByID)
	assert.Equal(t, director.ID, *updated.AcknowledgedByID)
	require.NotNil(t, updated.AcknowledgedAt)

	// double acknowledgment
	_, err = f.engine.Apply(context.Background(), task.ID, director.ID, Acknowledge{})
	assert.True(t, fault.IsValidation(err))
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	director := f.user(t, "director", models.RoleDirector, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, director, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Submit{})
	require.NoError(t, err)

	_, err = f.engine.Apply(context.Background(), task.ID, director.ID, Reject{})
	assert.True(t, fault.IsValidation(err))
	assert.Equal(t, models.TaskStatusCompleted, f.reload(t, task.ID).Status)
}

func TestRejectReturnsTaskToSubmitter(t *testing.T) {
	f := newFixture(t)
	director := f.user(t, "director", models.RoleDirector, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, director, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Submit{})
	require.NoError(t, err)

	updated, err := f.engine.Apply(context.Background(), task.ID, director.ID, Reject{Reason: "missing reference"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	require.NotNil(t, updated.HolderID)
	assert.Equal(t, staff.ID, *updated.HolderID)
	assert.Nil(t, updated.AcknowledgedByID)

	require.Len(t, f.dispatcher.rejected, 1)
	assert.Equal(t, staff.ID, f.dispatcher.rejected[0].ID)

	actions := f.actions(t, task.ID)
	require.Len(t, actions, 3)
	assert.Equal(t, models.ActionRejected, actions[2].Type)
	assert.Equal(t, "missing reference", actions[2].Description)
}

func TestApplyUnknownTask(t *testing.T) {
	f := newFixture(t)
	lead := f.user(t, "lead", models.RoleSupervisor, false)

	_, err := f.engine.Apply(context.Background(), uuid.New(), lead.ID, Close{})
	assert.True(t, fault.IsNotFound(err))
}

func TestAuditTrailPerAction(t *testing.T) {
	f := newFixture(t)
	director := f.user(t, "director", models.RoleDirector, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, director, staff)

	_, err := f.engine.Apply(context.Background(), task.ID, staff.ID, Submit{})
	require.NoError(t, err)
	_, err = f.engine.Apply(context.Background(), task.ID, director.ID, Acknowledge{})
	require.NoError(t, err)
	_, err = f.engine.Apply(context.Background(), task.ID, director.ID, Close{})
	require.NoError(t, err)

	// one action per committed transition, creation included
	assert.Len(t, f.actions(t, task.ID), 4)
	// every transition above changed at least one field
	assert.Len(t, f.histories(t, task.ID), 4)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	director := f.user(t, "director", models.RoleDirector, false)
	staff := f.user(t, "staff", models.RoleStaff, false)
	task := f.createFor(t, director, staff)

	ctx := context.Background()

	_, err := f.engine.Apply(ctx, task.ID, staff.ID, Submit{ReferenceNumber: "REF-1"})
	require.NoError(t, err)

	_, err = f.engine.Apply(ctx, task.ID, director.ID, Reject{Reason: "wrong attachment"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, f.reload(t, task.ID).Status)

	_, err = f.engine.Apply(ctx, task.ID, staff.ID, Submit{ReferenceNumber: "REF-2"})
	require.NoError(t, err)

	updated, err := f.engine.Apply(ctx, task.ID, director.ID, Acknowledge{})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)
	require.NotNil(t, updated.AcknowledgedByID)

	_, err = f.engine.Apply(ctx, task.ID, director.ID, Close{})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusClosed, f.reload(t, task.ID).Status)

	actions := f.actions(t, task.ID)
	types := make([]models.ActionType, 0, len(actions))
	for _, action := range actions {
		types = append(types, action.Type)
	}
	assert.Equal(t, []models.ActionType{
		models.ActionCreated,
		models.ActionSubmitted,
		models.ActionRejected,
		models.ActionSubmitted,
		models.ActionAcknowledged,
		models.ActionClosed,
	}, types)
}
