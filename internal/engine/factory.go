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
	"github.com/opsdesk-cloud/opsdesk/internal/sequence"
	"github.com/opsdesk-cloud/opsdesk/pkg/jsonmap"
	"gorm.io/gorm"
)

// CreateRequest describes one task or notice submission.
type CreateRequest struct {
	AssigneeTokens         []string   `json:"assignee_tokens"`
	Description            string     `json:"description"`
	PriorityID             uuid.UUID  `json:"priority_id"`
	ComplexityID           uuid.UUID  `json:"complexity_id"`
	PersonnelID            *uuid.UUID `json:"personnel_id,omitempty"`
	WorkcenterID           *uuid.UUID `json:"workcenter_id,omitempty"`
	AssignedCompletionDate *time.Time `json:"assigned_completion_date,omitempty"`
	IsNotice               bool       `json:"is_notice"`
	ReceiveID              *uuid.UUID `json:"receive_id,omitempty"`
	Attachment             string     `json:"attachment,omitempty"`
}

// Create resolves the recipient tokens and creates either one task
// per resolved assignee (standard fan-out) or a single shared notice
// row. Record numbers come from the atomic allocator; each committed
// row gets one CREATED action and one TASK_CREATED history entry.
// Notification dispatch is best-effort and never rolls back a
// committed row.
func (e *Engine) Create(ctx context.Context, actorID uuid.UUID, req *CreateRequest) (models.Tasks, error) {
	if req == nil {
		return nil, fault.Validationf("request is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fault.Validationf("a description of work is required")
	}
	if !req.IsNotice && req.AssignedCompletionDate == nil {
		return nil, fault.Validationf("an assigned completion date is required")
	}

	actor, err := e.user(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if err := e.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	resolved, err := e.resolver.Resolve(ctx, req.AssigneeTokens)
	if err != nil {
		return nil, err
	}

	if req.IsNotice {
		return e.createNotice(ctx, actor, req, resolved)
	}

	return e.fanOut(ctx, actor, req, resolved)
}

// fanOut creates one independent task per resolved assignee. Rows
// commit one at a time; a failure stops the remainder but never rolls
// back rows already committed.
func (e *Engine) fanOut(ctx context.Context, actor *models.User, req *CreateRequest, resolved []assignee.Assignee) (models.Tasks, error) {
	tasks := make(models.Tasks, 0, len(resolved))

	for _, recipient := range resolved {
		recordNumber, err := e.allocator.Next(ctx, sequence.KindTask)
		if err != nil {
			return tasks, fmt.Errorf("allocate record number: %w", err)
		}

		task := e.baseTask(req, actor, recordNumber)
		switch recipient.Kind {
		case assignee.KindInternal:
			id := recipient.UserID
			task.HolderID = &id
		case assignee.KindExternalEmail:
			task.ExternalEmail = recipient.Email
		case assignee.KindExternalName:
			task.ExternalName = recipient.DisplayName
		}

		if err := e.commitCreation(ctx, task, actor.ID, nil); err != nil {
			return tasks, err
		}

		metrics.TasksCreatedTotal.WithLabelValues("standard").Inc()
		e.dispatcher.NotifyAssigned(ctx, task, recipient)
		e.publish(event.TypeTaskCreated, task.ID, actor.ID)

		tasks = append(tasks, task)
	}

	return tasks, nil
}

// createNotice creates the single shared broadcast row. A notice is
// informational: its status is pinned to closed and it has no
// actionable lifecycle. Internal recipients join the roster through
// TaskAssignment rows; the holder field carries the first internal
// recipient for display only.
func (e *Engine) createNotice(ctx context.Context, actor *models.User, req *CreateRequest, resolved []assignee.Assignee) (models.Tasks, error) {
	recordNumber, err := e.allocator.Next(ctx, sequence.KindTask)
	if err != nil {
		return nil, fmt.Errorf("allocate record number: %w", err)
	}

	var (
		internals []assignee.Assignee
		emails    []string
		names     []string
	)

	for _, recipient := range resolved {
		switch recipient.Kind {
		case assignee.KindInternal:
			internals = append(internals, recipient)
		case assignee.KindExternalEmail:
			emails = append(emails, recipient.Email)
		case assignee.KindExternalName:
			names = append(names, recipient.DisplayName)
		}
	}

	groupID := uuid.New()
	task := e.baseTask(req, actor, recordNumber)
	task.Status = models.TaskStatusClosed
	task.IsNotice = true
	task.NoticeGroupID = &groupID
	task.ExternalEmail = strings.Join(emails, ",")
	task.ExternalName = strings.Join(names, ",")

	if len(internals) > 0 {
		id := internals[0].UserID
		task.HolderID = &id
	}

	assignments := make(models.TaskAssignments, 0, len(internals))
	for _, recipient := range internals {
		assignments = append(assignments, &models.TaskAssignment{
			ID:        uuid.New(),
			TaskID:    task.ID,
			UserID:    recipient.UserID,
			CreatedAt: time.Now().UTC(),
		})
	}

	if err := e.commitCreation(ctx, task, actor.ID, assignments); err != nil {
		return nil, err
	}

	metrics.TasksCreatedTotal.WithLabelValues("notice").Inc()
	e.dispatcher.NotifyNotice(ctx, task, resolved)
	e.publish(event.TypeNoticePublished, task.ID, actor.ID)

	return models.Tasks{task}, nil
}

// commitCreation writes the task row, its roster, the CREATED action
// and the TASK_CREATED history entry as one unit.
func (e *Engine) commitCreation(ctx context.Context, task *models.Task, actorID uuid.UUID, assignments models.TaskAssignments) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}

		for _, assignment := range assignments {
			if err := tx.Create(assignment).Error; err != nil {
				return fmt.Errorf("create assignment: %w", err)
			}
		}

		history := &models.TaskHistory{
			ID:        uuid.New(),
			TaskID:    task.ID,
			Action:    "TASK_CREATED",
			OldValues: jsonmap.FromAnyMap(nil),
			NewValues: jsonmap.FromAnyMap(creationValues(task)),
			ActorID:   actorID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("create history: %w", err)
		}

		action := &models.TaskAction{
			ID:          uuid.New(),
			TaskID:      task.ID,
			Type:        models.ActionCreated,
			ActorID:     actorID,
			Description: task.Description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Create(action).Error; err != nil {
			return fmt.Errorf("create action: %w", err)
		}

		return nil
	})
}

func (e *Engine) baseTask(req *CreateRequest, actor *models.User, recordNumber int64) *models.Task {
	return &models.Task{
		ID:                     uuid.New(),
		RecordNumber:           recordNumber,
		Status:                 models.TaskStatusActive,
		Description:            strings.TrimSpace(req.Description),
		PriorityID:             req.PriorityID,
		ComplexityID:           req.ComplexityID,
		PersonnelID:            req.PersonnelID,
		WorkcenterID:           req.WorkcenterID,
		AssignedCompletionDate: req.AssignedCompletionDate,
		Attachment:             req.Attachment,
		ReceiveID:              req.ReceiveID,
		CreatedByID:            actor.ID,
	}
}

func (e *Engine) checkReferences(ctx context.Context, req *CreateRequest) error {
	if err := e.exists(ctx, &models.Priority{}, req.PriorityID, "priority"); err != nil {
		return err
	}
	if err := e.exists(ctx, &models.Complexity{}, req.ComplexityID, "complexity"); err != nil {
		return err
	}
	if req.WorkcenterID != nil {
		if err := e.exists(ctx, &models.Workcenter{}, *req.WorkcenterID, "workcenter"); err != nil {
			return err
		}
	}
	if req.ReceiveID != nil {
		if err := e.exists(ctx, &models.Receive{}, *req.ReceiveID, "receive"); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) exists(ctx context.Context, model interface{}, id uuid.UUID, label string) error {
	err := e.db.WithContext(ctx).First(model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.NotFoundf("%s %s does not exist", label, id)
	}
	return err
}

func (e *Engine) user(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := new(models.User)

	err := e.db.WithContext(ctx).First(user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFoundf("user %s does not exist", id)
	}

	return user, err
}

func creationValues(task *models.Task) map[string]interface{} {
	values := map[string]interface{}{
		"record_number": task.RecordNumber,
		"status":        string(task.Status),
		"description":   task.Description,
	}

	if task.HolderID != nil {
		values["holder_id"] = task.HolderID.String()
	}
	if task.ExternalEmail != "" {
		values["external_email"] = task.ExternalEmail
	}
	if task.ExternalName != "" {
		values["external_name"] = task.ExternalName
	}

	return values
}
