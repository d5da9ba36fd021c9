package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/assignee"
	"github.com/opsdesk-cloud/opsdesk/internal/engine"
	"github.com/opsdesk-cloud/opsdesk/internal/event"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/internal/notify"
	"github.com/opsdesk-cloud/opsdesk/internal/sequence"
	"github.com/opsdesk-cloud/opsdesk/pkg/db"
	"github.com/opsdesk-cloud/opsdesk/pkg/env"
	"gorm.io/gorm"
)

type Task interface {
	WithDatabase(*gorm.DB) Task
	List(*ListRequest) (models.Tasks, error)
	Get(uuid.UUID) (*models.Task, error)
	Create(actorID uuid.UUID, req *engine.CreateRequest) (models.Tasks, error)
	Apply(taskID, actorID uuid.UUID, req *ActionRequest) (*models.Task, error)
	Actions(uuid.UUID) (models.TaskActions, error)
	History(uuid.UUID) (models.TaskHistories, error)
}

type taskService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Task {
	return &taskService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (t *taskService) WithDatabase(conn *gorm.DB) Task {
	t.db = conn
	return t
}

// engine builds the lifecycle engine on the service's connection.
func (t *taskService) engine() *engine.Engine {
	vars := env.Variables()

	mailer := notify.NewMailer(
		vars.MailGatewayURL,
		vars.MailFromAddress,
		vars.MailGatewayTimeout,
		nil,
	)

	return engine.New(
		t.db,
		assignee.NewResolver(t.db, vars.BroadcastAlias),
		sequence.NewAllocator(t.db),
		notify.NewDispatcher(t.db, mailer),
		event.Default(),
	)
}

type ListRequest struct {
	Limit    uint64
	Offset   uint64
	OrderBy  []string
	Status   string
	HolderID string
	Notices  *bool
	Receive  string
}

func (t *taskService) List(req *ListRequest) (models.Tasks, error) {
	var (
		tasks = make(models.Tasks, 0)
		q     = t.db.WithContext(t.ctx)
	)

	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}

	if req.HolderID != "" {
		id, err := uuid.Parse(req.HolderID)
		if err != nil {
			return nil, fault.Validationf("invalid holder id %q", req.HolderID)
		}
		q = q.Where("holder_id = ?", id)
	}

	if req.Notices != nil {
		q = q.Where("is_notice = ?", *req.Notices)
	}

	if req.Receive != "" {
		id, err := uuid.Parse(req.Receive)
		if err != nil {
			return nil, fault.Validationf("invalid receive id %q", req.Receive)
		}
		q = q.Where("receive_id = ?", id)
	}

	for _, orderBy := range req.OrderBy {
		q = q.Order(orderBy)
	}

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	return tasks, q.Preload("Holder").Preload("Priority").Preload("Complexity").Find(&tasks).Error
}

func (t *taskService) Get(id uuid.UUID) (*models.Task, error) {
	var (
		task = new(models.Task)
		q    = t.db.WithContext(t.ctx)
	)

	err := q.Preload("Holder").
		Preload("Priority").
		Preload("Complexity").
		Preload("Workcenter").
		Preload("CreatedBy").
		First(task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return task, err
}

func (t *taskService) Create(actorID uuid.UUID, req *engine.CreateRequest) (models.Tasks, error) {
	return t.engine().Create(t.ctx, actorID, req)
}

// ActionRequest carries one lifecycle action against a task. Type
// selects the action; the remaining fields are read per type.
type ActionRequest struct {
	Type            string     `json:"type"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	Description     string     `json:"description,omitempty"`
	ToUserID        *uuid.UUID `json:"to_user_id,omitempty"`
	ToEmail         string     `json:"to_email,omitempty"`
	ToName          string     `json:"to_name,omitempty"`
	Reason          string     `json:"reason,omitempty"`
}

// Payload maps the wire request onto the engine's closed payload
// union.
func (r *ActionRequest) Payload() (engine.Payload, error) {
	switch models.ActionType(r.Type) {
	case models.ActionSubmitted:
		return engine.Submit{
			ReferenceNumber: r.ReferenceNumber,
			Description:     r.Description,
		}, nil
	case models.ActionForwarded:
		return engine.Forward{
			ToUserID:    r.ToUserID,
			ToEmail:     r.ToEmail,
			ToName:      r.ToName,
			Description: r.Description,
		}, nil
	case models.ActionClosed:
		return engine.Close{Description: r.Description}, nil
	case models.ActionReverted:
		return engine.Revert{Description: r.Description}, nil
	case models.ActionAcknowledged:
		return engine.Acknowledge{Description: r.Description}, nil
	case models.ActionRejected:
		return engine.Reject{Reason: r.Reason}, nil
	default:
		return nil, fault.Validationf("unsupported action type %q", r.Type)
	}
}

func (t *taskService) Apply(taskID, actorID uuid.UUID, req *ActionRequest) (*models.Task, error) {
	payload, err := req.Payload()
	if err != nil {
		return nil, err
	}

	return t.engine().Apply(t.ctx, taskID, actorID, payload)
}

func (t *taskService) Actions(taskID uuid.UUID) (models.TaskActions, error) {
	var (
		actions = make(models.TaskActions, 0)
		q       = t.db.WithContext(t.ctx)
	)

	return actions, q.Where("task_id = ?", taskID).
		Preload("Actor").
		Order("created_at asc").
		Find(&actions).Error
}

func (t *taskService) History(taskID uuid.UUID) (models.TaskHistories, error) {
	var (
		histories = make(models.TaskHistories, 0)
		q         = t.db.WithContext(t.ctx)
	)

	return histories, q.Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&histories).Error
}
