package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/pkg/db"
	"gorm.io/gorm"
)

type Notification interface {
	WithDatabase(*gorm.DB) Notification
	List(*ListRequest) (models.Notifications, error)
	MarkRead(id, userID uuid.UUID) (*models.Notification, error)
}

type notificationService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Notification {
	return &notificationService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (n *notificationService) WithDatabase(conn *gorm.DB) Notification {
	n.db = conn
	return n
}

type ListRequest struct {
	UserID string
	Unread bool
	Limit  uint64
	Offset uint64
}

func (n *notificationService) List(req *ListRequest) (models.Notifications, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fault.Validationf("invalid user id %q", req.UserID)
	}

	q := n.db.WithContext(n.ctx).Where("user_id = ?", userID)

	if req.Unread {
		q = q.Where("read = ?", false)
	}

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	rows := make(models.Notifications, 0)
	return rows, q.Order("created_at desc").Find(&rows).Error
}

// MarkRead flags the notification as read. Only the addressee may
// mark their own rows.
func (n *notificationService) MarkRead(id, userID uuid.UUID) (*models.Notification, error) {
	row := new(models.Notification)

	err := n.db.WithContext(n.ctx).First(row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFoundf("notification %s does not exist", id)
	}
	if err != nil {
		return nil, err
	}

	if row.UserID != userID {
		return nil, fault.Permissionf("notification %s is not addressed to you", id)
	}

	if row.Read {
		return row, nil
	}

	row.Read = true
	return row, n.db.WithContext(n.ctx).Save(row).Error
}
