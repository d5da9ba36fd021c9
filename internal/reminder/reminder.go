// Package reminder periodically re-surfaces completed tasks that are
// still awaiting leadership acknowledgment.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/opsdesk-cloud/opsdesk/internal/metrics"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/pkg/log"
	"github.com/robfig/cron"
	"gorm.io/gorm"
)

type Sweeper struct {
	db       *gorm.DB
	schedule cron.Schedule
	age      time.Duration
}

// New builds a sweeper firing on the given cron expression.
// Descriptors like @hourly are accepted.
func New(conn *gorm.DB, expr string, age time.Duration) (*Sweeper, error) {
	parser := cron.NewParser(
		cron.Minute |
			cron.Hour |
			cron.Dom |
			cron.Month |
			cron.Dow |
			cron.Descriptor,
	)

	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", expr, err)
	}

	return &Sweeper{db: conn, schedule: sched, age: age}, nil
}

// Run blocks, sweeping on schedule until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log.Info("reminder sweeper started", "age", s.age.String())

	for {
		select {
		case <-time.After(time.Until(s.schedule.Next(time.Now()))):
			if count, err := s.Sweep(ctx); err != nil {
				log.Error("reminder sweep failure", "error", err)
			} else if count > 0 {
				log.Info("acknowledgment reminders dispatched", "count", count)
			}
		case <-ctx.Done():
			log.Info("reminder sweeper stopped")
			return
		}
	}
}

// Sweep re-surfaces every pending-approval notification whose task is
// still completed and unacknowledged and whose last reminder is older
// than the configured age. Each reminder marks the row unread and
// stamps it, so a task is nagged about at most once per window.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.age)

	rows := make(models.Notifications, 0)
	err := s.db.WithContext(ctx).
		Joins("JOIN tasks ON tasks.id = notifications.task_id").
		Where("notifications.type = ?", models.NotificationPendingApproval).
		Where("tasks.status = ?", models.TaskStatusCompleted).
		Where("tasks.acknowledged_by_id IS NULL").
		Where(
			"(notifications.last_reminded_at IS NULL AND notifications.created_at < ?) OR notifications.last_reminded_at < ?",
			cutoff, cutoff,
		).
		Find(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("list stale acknowledgments: %w", err)
	}

	now := time.Now().UTC()
	reminded := 0

	for _, row := range rows {
		row.Read = false
		row.LastRemindedAt = &now

		if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
			log.Error("reminder update failure",
				"notification_id", row.ID,
				"task_id", row.TaskID,
				"error", err)
			continue
		}

		metrics.RemindersTotal.Inc()
		reminded++
	}

	return reminded, nil
}
