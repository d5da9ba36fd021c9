package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/pkg/db"
	"gorm.io/gorm"
)

type User interface {
	WithDatabase(*gorm.DB) User
	List(*ListRequest) (models.Users, error)
	Get(uuid.UUID) (*models.User, error)
}

type userService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) User {
	return &userService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (u *userService) WithDatabase(conn *gorm.DB) User {
	u.db = conn
	return u
}

type ListRequest struct {
	Role    string
	Limit   uint64
	Offset  uint64
	OrderBy []string
}

func (u *userService) List(req *ListRequest) (models.Users, error) {
	var (
		users = make(models.Users, 0)
		q     = u.db.WithContext(u.ctx)
	)

	if req.Role != "" {
		q = q.Where("role = ?", req.Role)
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

	return users, q.Find(&users).Error
}

func (u *userService) Get(id uuid.UUID) (*models.User, error) {
	user := new(models.User)

	err := u.db.WithContext(u.ctx).First(user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return user, err
}
