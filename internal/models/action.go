package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionType enumerates the audited task transitions.
type ActionType string

const (
	ActionCreated      ActionType = "created"
	ActionSubmitted    ActionType = "submitted"
	ActionForwarded    ActionType = "forwarded"
	ActionClosed       ActionType = "closed"
	ActionReverted     ActionType = "reverted"
	ActionAcknowledged ActionType = "acknowledged"
	ActionRejected     ActionType = "rejected"
)

// TaskAction is an append-only event recording one committed task
// transition. Rows are never updated or deleted.
type TaskAction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID          uuid.UUID  `gorm:"type:uuid;index;not null" json:"task_id"`
	Type            ActionType `gorm:"type:text;index;not null" json:"type"`
	ActorID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"actor_id"`
	Actor           *User      `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	ForwardedToID   *uuid.UUID `gorm:"type:uuid" json:"forwarded_to_id,omitempty"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	Description     string     `json:"description,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;index" json:"created_at"`
}

type TaskActions []*TaskAction
