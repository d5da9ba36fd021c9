package receive

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/internal/sequence"
	"github.com/opsdesk-cloud/opsdesk/pkg/db"
	"gorm.io/gorm"
)

type Receive interface {
	WithDatabase(*gorm.DB) Receive
	List(*ListRequest) (models.Receives, error)
	Get(uuid.UUID) (*models.Receive, error)
	Create(actorID uuid.UUID, req *CreateRequest) (*models.Receive, error)
	Tasks(uuid.UUID) (models.Tasks, error)
}

type receiveService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Receive {
	return &receiveService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (r *receiveService) WithDatabase(conn *gorm.DB) Receive {
	r.db = conn
	return r
}

type ListRequest struct {
	Limit   uint64
	Offset  uint64
	OrderBy []string
	Sender  string
}

func (r *receiveService) List(req *ListRequest) (models.Receives, error) {
	var (
		receives = make(models.Receives, 0)
		q        = r.db.WithContext(r.ctx)
	)

	if req.Sender != "" {
		q = q.Where("sender = ?", req.Sender)
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

	return receives, q.Find(&receives).Error
}

func (r *receiveService) Get(id uuid.UUID) (*models.Receive, error) {
	var (
		receive = new(models.Receive)
		q       = r.db.WithContext(r.ctx)
	)

	err := q.First(receive, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return receive, err
}

type CreateRequest struct {
	Subject      string     `json:"subject"`
	Sender       string     `json:"sender"`
	Body         string     `json:"body,omitempty"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
	SuspenseDate *time.Time `json:"suspense_date,omitempty"`
}

// Create logs one piece of incoming correspondence under the next
// receive record number.
func (r *receiveService) Create(actorID uuid.UUID, req *CreateRequest) (*models.Receive, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return nil, fault.Validationf("a subject is required")
	}
	if strings.TrimSpace(req.Sender) == "" {
		return nil, fault.Validationf("a sender is required")
	}

	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		receivedAt = req.ReceivedAt.UTC()
	}

	recordNumber, err := sequence.NewAllocator(r.db).Next(r.ctx, sequence.KindReceive)
	if err != nil {
		return nil, err
	}

	receive := &models.Receive{
		ID:           uuid.New(),
		RecordNumber: recordNumber,
		Subject:      strings.TrimSpace(req.Subject),
		Sender:       strings.TrimSpace(req.Sender),
		Body:         req.Body,
		ReceivedAt:   receivedAt,
		SuspenseDate: req.SuspenseDate,
		CreatedByID:  actorID,
	}

	return receive, r.db.WithContext(r.ctx).Create(receive).Error
}

// Tasks lists the tasks dispatched in response to the receive.
func (r *receiveService) Tasks(id uuid.UUID) (models.Tasks, error) {
	var (
		tasks = make(models.Tasks, 0)
		q     = r.db.WithContext(r.ctx)
	)

	return tasks, q.Where("receive_id = ?", id).
		Preload("Holder").
		Order("created_at asc").
		Find(&tasks).Error
}
