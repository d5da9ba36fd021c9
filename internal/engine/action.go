package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/assignee"
	"github.com/opsdesk-cloud/opsdesk/internal/event"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/metrics"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/internal/permission"
	"github.com/opsdesk-cloud/opsdesk/pkg/jsonmap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// transition accumulates the outcome of one action while it is being
// validated inside the transaction: the field diff for history, the
// action row, and whatever the post-commit notification needs.
type transition struct {
	old, new   map[string]interface{}
	action     *models.TaskAction
	forwardTo  *assignee.Assignee
	rejectTo   *models.User
	notifyLead bool
}

func (t *transition) record(field string, oldValue, newValue interface{}) {
	if oldValue == newValue {
		return
	}
	t.old[field] = oldValue
	t.new[field] = newValue
}

// Apply validates and commits one action against the task. The fresh
// row read, precondition checks, task update, history entry and
// action row all happen inside a single transaction, so an action is
// never recorded without its state change or vice versa. Closed is
// terminal: every action against a closed task fails validation.
func (e *Engine) Apply(ctx context.Context, taskID, actorID uuid.UUID, payload Payload) (*models.Task, error) {
	if payload == nil {
		return nil, fault.Validationf("an action payload is required")
	}
	if err := payload.validate(); err != nil {
		return nil, err
	}

	actor, err := e.user(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var (
		task models.Task
		tr   = &transition{
			old: map[string]interface{}{},
			new: map[string]interface{}{},
		}
	)

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// re-validate against a freshly read row; racing actors are
		// serialized by the row lock on postgres
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFoundf("task %s does not exist", taskID)
			}
			return err
		}

		if task.Status == models.TaskStatusClosed {
			return fault.Validationf("task #%d is closed", task.RecordNumber)
		}

		tr.action = &models.TaskAction{
			ID:        uuid.New(),
			TaskID:    task.ID,
			Type:      payload.ActionType(),
			ActorID:   actor.ID,
			CreatedAt: time.Now().UTC(),
		}

		var applyErr error
		switch p := payload.(type) {
		case Submit:
			applyErr = e.applySubmit(&task, actor, p, tr)
		case Forward:
			applyErr = e.applyForward(tx, &task, p, tr)
		case Close:
			applyErr = e.applyClose(&task, actor, p, tr)
		case Revert:
			applyErr = e.applyRevert(&task, actor, p, tr)
		case Acknowledge:
			applyErr = e.applyAcknowledge(&task, actor, p, tr)
		case Reject:
			applyErr = e.applyReject(tx, &task, actor, p, tr)
		default:
			applyErr = fault.Validationf("unsupported action payload %T", payload)
		}
		if applyErr != nil {
			return applyErr
		}

		if len(tr.new) > 0 {
			history := &models.TaskHistory{
				ID:        uuid.New(),
				TaskID:    task.ID,
				Action:    historyName(payload.ActionType()),
				OldValues: jsonmap.FromAnyMap(tr.old),
				NewValues: jsonmap.FromAnyMap(tr.new),
				ActorID:   actor.ID,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Create(history).Error; err != nil {
				return fmt.Errorf("create history: %w", err)
			}
		}

		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		if err := tx.Create(tr.action).Error; err != nil {
			return fmt.Errorf("create action: %w", err)
		}

		return nil
	})
	if err != nil {
		if kind := fault.KindOf(err); kind != "" {
			metrics.TaskActionFailuresTotal.WithLabelValues(string(payload.ActionType()), string(kind)).Inc()
		}
		return nil, err
	}

	metrics.TaskActionsTotal.WithLabelValues(string(payload.ActionType())).Inc()
	e.dispatch(ctx, &task, payload, tr)
	e.publish(eventType(payload.ActionType()), task.ID, actor.ID)

	return &task, nil
}

func (e *Engine) applySubmit(task *models.Task, actor *models.User, p Submit, tr *transition) error {
	if task.HolderID == nil || *task.HolderID != actor.ID {
		return fault.Validationf("only the current holder may submit task #%d", task.RecordNumber)
	}

	tr.record("status", string(task.Status), string(models.TaskStatusCompleted))
	task.Status = models.TaskStatusCompleted

	tr.action.ReferenceNumber = p.ReferenceNumber
	tr.action.Description = p.Description
	tr.notifyLead = true
	return nil
}

func (e *Engine) applyForward(tx *gorm.DB, task *models.Task, p Forward, tr *transition) error {
	// a completed task awaiting sign-off must be acknowledged or
	// rejected first
	if task.Status == models.TaskStatusCompleted && task.AcknowledgedByID == nil {
		return fault.Validationf("task #%d is awaiting acknowledgment and cannot be forwarded", task.RecordNumber)
	}

	oldHolder := uuidValue(task.HolderID)

	switch {
	case p.ToUserID != nil:
		holder := new(models.User)
		if err := tx.First(holder, "id = ?", *p.ToUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFoundf("user %s does not exist", *p.ToUserID)
			}
			return err
		}

		id := holder.ID
		tr.record("holder_id", oldHolder, id.String())
		tr.record("external_email", task.ExternalEmail, "")
		tr.record("external_name", task.ExternalName, "")
		task.HolderID = &id
		task.ExternalEmail = ""
		task.ExternalName = ""

		tr.action.ForwardedToID = &id
		tr.forwardTo = &assignee.Assignee{
			Kind:        assignee.KindInternal,
			UserID:      holder.ID,
			Email:       strings.ToLower(holder.Email),
			DisplayName: holder.Name,
		}

	case strings.TrimSpace(p.ToEmail) != "":
		email := strings.ToLower(strings.TrimSpace(p.ToEmail))
		tr.record("holder_id", oldHolder, nil)
		tr.record("external_email", task.ExternalEmail, email)
		tr.record("external_name", task.ExternalName, "")
		task.HolderID = nil
		task.ExternalEmail = email
		task.ExternalName = ""

		tr.forwardTo = &assignee.Assignee{Kind: assignee.KindExternalEmail, Email: email, DisplayName: email}

	default:
		name := strings.ToUpper(strings.TrimSpace(p.ToName))
		tr.record("holder_id", oldHolder, nil)
		tr.record("external_email", task.ExternalEmail, "")
		tr.record("external_name", task.ExternalName, name)
		task.HolderID = nil
		task.ExternalEmail = ""
		task.ExternalName = name

		tr.forwardTo = &assignee.Assignee{Kind: assignee.KindExternalName, DisplayName: name}
	}

	tr.action.Description = p.Description
	return nil
}

func (e *Engine) applyClose(task *models.Task, actor *models.User, p Close, tr *transition) error {
	if !permission.CanCloseTask(actor.Role) {
		return fault.Permissionf("role %q may not close tasks", actor.Role)
	}

	tr.record("status", string(task.Status), string(models.TaskStatusClosed))
	task.Status = models.TaskStatusClosed

	tr.action.Description = p.Description
	return nil
}

func (e *Engine) applyRevert(task *models.Task, actor *models.User, p Revert, tr *transition) error {
	if !permission.CanRevertTask(actor.Role, actor.CanRevert) {
		return fault.Permissionf("user %q may not revert tasks", actor.Name)
	}

	tr.record("status", string(task.Status), string(models.TaskStatusActive))
	task.Status = models.TaskStatusActive

	// a reverted task is no longer acknowledged
	if task.AcknowledgedByID != nil {
		tr.record("acknowledged_by_id", uuidValue(task.AcknowledgedByID), nil)
		tr.record("acknowledged_at", timeValue(task.AcknowledgedAt), nil)
		task.AcknowledgedByID = nil
		task.AcknowledgedAt = nil
	}

	tr.action.Description = p.Description
	return nil
}

func (e *Engine) applyAcknowledge(task *models.Task, actor *models.User, p Acknowledge, tr *transition) error {
	if task.Status != models.TaskStatusCompleted {
		return fault.Validationf("task #%d is not completed", task.RecordNumber)
	}
	if !permission.CanAcknowledgeTask(actor.Role, actor.CanAcknowledge) {
		return fault.Permissionf("user %q may not acknowledge tasks", actor.Name)
	}
	if task.AcknowledgedByID != nil {
		return fault.Validationf("task #%d is already acknowledged", task.RecordNumber)
	}

	now := time.Now().UTC()
	tr.record("acknowledged_by_id", nil, actor.ID.String())
	tr.record("acknowledged_at", nil, now.Format(time.RFC3339))
	task.AcknowledgedByID = &actor.ID
	task.AcknowledgedAt = &now

	tr.action.Description = p.Description
	return nil
}

func (e *Engine) applyReject(tx *gorm.DB, task *models.Task, actor *models.User, p Reject, tr *transition) error {
	if task.Status != models.TaskStatusCompleted {
		return fault.Validationf("task #%d is not completed", task.RecordNumber)
	}
	if !permission.CanAcknowledgeTask(actor.Role, actor.CanAcknowledge) {
		return fault.Permissionf("user %q may not reject tasks", actor.Name)
	}

	tr.record("status", string(task.Status), string(models.TaskStatusInProgress))
	task.Status = models.TaskStatusInProgress

	// the task goes back to whoever performed the most recent
	// submission; fall back to the current holder if none is found
	var submitted models.TaskAction
	err := tx.Where("task_id = ? AND type = ?", task.ID, models.ActionSubmitted).
		Order("created_at desc").
		First(&submitted).Error
	switch {
	case err == nil:
		if task.HolderID == nil || *task.HolderID != submitted.ActorID {
			id := submitted.ActorID
			tr.record("holder_id", uuidValue(task.HolderID), id.String())
			tr.record("external_email", task.ExternalEmail, "")
			tr.record("external_name", task.ExternalName, "")
			task.HolderID = &id
			task.ExternalEmail = ""
			task.ExternalName = ""
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// holder unchanged
	default:
		return err
	}

	if task.AcknowledgedByID != nil {
		tr.record("acknowledged_by_id", uuidValue(task.AcknowledgedByID), nil)
		tr.record("acknowledged_at", timeValue(task.AcknowledgedAt), nil)
		task.AcknowledgedByID = nil
		task.AcknowledgedAt = nil
	}

	if task.HolderID != nil {
		holder := new(models.User)
		if err := tx.First(holder, "id = ?", *task.HolderID).Error; err == nil {
			tr.rejectTo = holder
		}
	}

	tr.action.Description = p.Reason
	return nil
}

// dispatch fires the post-commit notifications for the action. All
// calls are best-effort; the transition is already committed.
func (e *Engine) dispatch(ctx context.Context, task *models.Task, payload Payload, tr *transition) {
	switch p := payload.(type) {
	case Submit:
		if tr.notifyLead {
			e.dispatcher.NotifyPendingAcknowledgment(ctx, task, e.leadership(ctx))
		}
	case Forward:
		if tr.forwardTo != nil {
			e.dispatcher.NotifyForwarded(ctx, task, *tr.forwardTo)
		}
	case Reject:
		e.dispatcher.NotifyRejected(ctx, task, tr.rejectTo, p.Reason)
	}
}

// leadership returns every user in the tier notified about pending
// acknowledgments.
func (e *Engine) leadership(ctx context.Context) models.Users {
	users := make(models.Users, 0)
	if err := e.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil
	}

	leads := make(models.Users, 0, len(users))
	for _, user := range users {
		if permission.IsLeadership(user.Role) {
			leads = append(leads, user)
		}
	}
	return leads
}

func historyName(t models.ActionType) string {
	return "TASK_" + strings.ToUpper(string(t))
}

func eventType(t models.ActionType) event.Type {
	switch t {
	case models.ActionSubmitted:
		return event.TypeTaskSubmitted
	case models.ActionForwarded:
		return event.TypeTaskForwarded
	case models.ActionClosed:
		return event.TypeTaskClosed
	case models.ActionReverted:
		return event.TypeTaskReverted
	case models.ActionAcknowledged:
		return event.TypeTaskAcknowledged
	case models.ActionRejected:
		return event.TypeTaskRejected
	default:
		return event.TypeTaskCreated
	}
}

func uuidValue(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

func timeValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
