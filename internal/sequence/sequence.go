package sequence

import (
	"context"

	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"gorm.io/gorm"
)

// Record kinds with their own number series.
const (
	KindTask    = "task"
	KindReceive = "receive"
)

const createRetries = 3

// Allocator hands out monotonically increasing record numbers, one
// series per kind. The increment runs as a single UPDATE inside a
// transaction, so numbers stay unique across concurrent service
// instances sharing the database.
type Allocator struct {
	db *gorm.DB
}

func NewAllocator(conn *gorm.DB) *Allocator {
	return &Allocator{db: conn}
}

// Next returns the next record number for kind.
func (a *Allocator) Next(ctx context.Context, kind string) (int64, error) {
	var (
		value int64
		err   error
	)

	// Two instances may race to create the counter row for a fresh
	// kind; the loser of the unique-key conflict retries and takes
	// the increment path.
	for attempt := 0; attempt < createRetries; attempt++ {
		if value, err = a.next(ctx, kind); err == nil {
			return value, nil
		}
	}

	return 0, err
}

func (a *Allocator) next(ctx context.Context, kind string) (value int64, err error) {
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RecordCounter{}).
			Where("kind = ?", kind).
			Update("value", gorm.Expr("value + 1"))
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			counter := &models.RecordCounter{Kind: kind, Value: 1}
			if err := tx.Create(counter).Error; err != nil {
				return err
			}
			value = counter.Value
			return nil
		}

		var counter models.RecordCounter
		if err := tx.First(&counter, "kind = ?", kind).Error; err != nil {
			return err
		}

		value = counter.Value
		return nil
	})

	return
}
