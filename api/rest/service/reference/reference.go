// Package reference lists the static lookup tables tasks are
// classified against.
package reference

import (
	"context"

	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/pkg/db"
	"gorm.io/gorm"
)

type Reference interface {
	WithDatabase(*gorm.DB) Reference
	Priorities() (models.Priorities, error)
	Complexities() (models.Complexities, error)
	Workcenters() (models.Workcenters, error)
}

type referenceService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Reference {
	return &referenceService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (r *referenceService) WithDatabase(conn *gorm.DB) Reference {
	r.db = conn
	return r
}

func (r *referenceService) Priorities() (models.Priorities, error) {
	rows := make(models.Priorities, 0)
	return rows, r.db.WithContext(r.ctx).Order("rank asc").Find(&rows).Error
}

func (r *referenceService) Complexities() (models.Complexities, error) {
	rows := make(models.Complexities, 0)
	return rows, r.db.WithContext(r.ctx).Order("rank asc").Find(&rows).Error
}

func (r *referenceService) Workcenters() (models.Workcenters, error) {
	rows := make(models.Workcenters, 0)
	return rows, r.db.WithContext(r.ctx).Order("code asc").Find(&rows).Error
}
