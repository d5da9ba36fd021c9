package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enumerates the in-app notification categories.
type NotificationType string

const (
	NotificationAssigned        NotificationType = "assigned"
	NotificationForwarded       NotificationType = "forwarded"
	NotificationRejected        NotificationType = "rejected"
	NotificationNotice          NotificationType = "notice"
	NotificationPendingApproval NotificationType = "pending_approval"
)

// Notification is an in-app message surfaced to an internal user
// about activity on a task.
type Notification struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	TaskID         uuid.UUID        `gorm:"type:uuid;index;not null" json:"task_id"`
	Type           NotificationType `gorm:"type:text;index;not null" json:"type"`
	Message        string           `gorm:"not null" json:"message"`
	Read           bool             `gorm:"index;not null;default:false" json:"read"`
	LastRemindedAt *time.Time       `json:"last_reminded_at,omitempty"`
	CreatedAt      time.Time        `gorm:"not null;index" json:"created_at"`
}

type Notifications []*Notification
