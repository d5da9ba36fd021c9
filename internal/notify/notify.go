package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/assignee"
	"github.com/opsdesk-cloud/opsdesk/internal/metrics"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/pkg/log"
	"gorm.io/gorm"
)

// Dispatcher converts committed task transitions into in-app rows and
// emails. Every method is best-effort: failures are logged with
// task/recipient correlation and never surface to the engine.
type Dispatcher interface {
	NotifyAssigned(ctx context.Context, task *models.Task, recipient assignee.Assignee)
	NotifyForwarded(ctx context.Context, task *models.Task, recipient assignee.Assignee)
	NotifyRejected(ctx context.Context, task *models.Task, recipient *models.User, reason string)
	NotifyNotice(ctx context.Context, task *models.Task, recipients []assignee.Assignee)
	NotifyPendingAcknowledgment(ctx context.Context, task *models.Task, leadership models.Users)
}

type dispatcher struct {
	db     *gorm.DB
	mailer *Mailer
}

// NewDispatcher constructs the production dispatcher.
func NewDispatcher(conn *gorm.DB, mailer *Mailer) Dispatcher {
	return &dispatcher{db: conn, mailer: mailer}
}

func (d *dispatcher) NotifyAssigned(ctx context.Context, task *models.Task, recipient assignee.Assignee) {
	message := fmt.Sprintf("Task #%d has been assigned to you", task.RecordNumber)
	subject := fmt.Sprintf("Task #%d assigned", task.RecordNumber)

	d.deliver(ctx, task, recipient, models.NotificationAssigned, subject, message)
}

func (d *dispatcher) NotifyForwarded(ctx context.Context, task *models.Task, recipient assignee.Assignee) {
	message := fmt.Sprintf("Task #%d has been forwarded to you", task.RecordNumber)
	subject := fmt.Sprintf("Task #%d forwarded", task.RecordNumber)

	d.deliver(ctx, task, recipient, models.NotificationForwarded, subject, message)
}

func (d *dispatcher) NotifyRejected(ctx context.Context, task *models.Task, recipient *models.User, reason string) {
	if recipient == nil {
		return
	}

	message := fmt.Sprintf("Task #%d was rejected and returned to you: %s", task.RecordNumber, reason)
	subject := fmt.Sprintf("Task #%d rejected", task.RecordNumber)

	d.deliver(ctx, task, assignee.Assignee{
		Kind:        assignee.KindInternal,
		UserID:      recipient.ID,
		Email:       recipient.Email,
		DisplayName: recipient.Name,
	}, models.NotificationRejected, subject, message)
}

func (d *dispatcher) NotifyNotice(ctx context.Context, task *models.Task, recipients []assignee.Assignee) {
	subject := fmt.Sprintf("Notice #%d published", task.RecordNumber)
	message := fmt.Sprintf("Notice #%d: %s", task.RecordNumber, task.Description)

	// every recipient is mailed individually; one bounce never
	// blocks the rest
	for _, recipient := range recipients {
		d.deliver(ctx, task, recipient, models.NotificationNotice, subject, message)
	}
}

func (d *dispatcher) NotifyPendingAcknowledgment(ctx context.Context, task *models.Task, leadership models.Users) {
	message := fmt.Sprintf("Task #%d is completed and awaiting acknowledgment", task.RecordNumber)

	for _, user := range leadership {
		d.insertRow(ctx, task, user.ID, models.NotificationPendingApproval, message)
	}
}

// deliver writes the in-app row for internal recipients and mails
// anyone with an address.
func (d *dispatcher) deliver(ctx context.Context, task *models.Task, recipient assignee.Assignee, kind models.NotificationType, subject, message string) {
	if recipient.Internal() {
		d.insertRow(ctx, task, recipient.UserID, kind, message)
	}

	if recipient.Email == "" {
		return
	}

	if err := d.mailer.Send(detach(ctx), Email{
		To:      recipient.Email,
		Subject: subject,
		Body:    message,
	}); err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues("email").Inc()
		log.Error("email dispatch failure",
			"task_id", task.ID,
			"record_number", task.RecordNumber,
			"recipient", recipient.Email,
			"error", err)
	}
}

func (d *dispatcher) insertRow(ctx context.Context, task *models.Task, userID uuid.UUID, kind models.NotificationType, message string) {
	row := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    task.ID,
		Type:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if err := d.db.WithContext(detach(ctx)).Create(row).Error; err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues("in_app").Inc()
		log.Error("in-app notification failure",
			"task_id", task.ID,
			"record_number", task.RecordNumber,
			"user_id", userID,
			"error", err)
	}
}

// detach keeps dispatch alive past request cancellation; the state
// change it reports is already committed.
func detach(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithoutCancel(ctx)
}
