package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus enumerates the lifecycle states of a task.
// Closed is terminal: no engine action can move a task out of it.
type TaskStatus string

const (
	TaskStatusActive     TaskStatus = "active"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusClosed     TaskStatus = "closed"
)

// Task is one unit of dispatched work. A non-notice task is held by
// exactly one party at a time: either an internal user (HolderID) or
// an external contact (ExternalName/ExternalEmail), never both.
type Task struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecordNumber           int64      `gorm:"uniqueIndex;not null" json:"record_number"`
	Status                 TaskStatus `gorm:"type:text;index;not null" json:"status"`
	IsNotice               bool       `gorm:"index;not null;default:false" json:"is_notice"`
	NoticeGroupID          *uuid.UUID `gorm:"type:uuid;index" json:"notice_group_id,omitempty"`
	Description            string     `gorm:"not null" json:"description"`
	HolderID               *uuid.UUID `gorm:"type:uuid;index" json:"holder_id,omitempty"`
	Holder                 *User      `gorm:"foreignKey:HolderID" json:"holder,omitempty"`
	ExternalName           string     `json:"external_name,omitempty"`
	ExternalEmail          string     `json:"external_email,omitempty"`
	PriorityID             uuid.UUID  `gorm:"type:uuid;not null" json:"priority_id"`
	Priority               *Priority  `gorm:"foreignKey:PriorityID" json:"priority,omitempty"`
	ComplexityID           uuid.UUID  `gorm:"type:uuid;not null" json:"complexity_id"`
	Complexity             *Complexity `gorm:"foreignKey:ComplexityID" json:"complexity,omitempty"`
	PersonnelID            *uuid.UUID `gorm:"type:uuid" json:"personnel_id,omitempty"`
	WorkcenterID           *uuid.UUID `gorm:"type:uuid;index" json:"workcenter_id,omitempty"`
	Workcenter             *Workcenter `gorm:"foreignKey:WorkcenterID" json:"workcenter,omitempty"`
	AssignedCompletionDate *time.Time `json:"assigned_completion_date,omitempty"`
	Attachment             string     `json:"attachment,omitempty"`
	ReceiveID              *uuid.UUID `gorm:"type:uuid;index" json:"receive_id,omitempty"`
	CreatedByID            uuid.UUID  `gorm:"type:uuid;index;not null" json:"created_by_id"`
	CreatedBy              *User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AcknowledgedByID       *uuid.UUID `gorm:"type:uuid" json:"acknowledged_by_id,omitempty"`
	AcknowledgedAt         *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt              time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"not null" json:"updated_at"`
}

type Tasks []*Task

// TaskAssignment links the internal recipients of a notice to the
// shared task row. It is a roster, not an ownership relation.
type TaskAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;index;not null" json:"task_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

type TaskAssignments []*TaskAssignment
