package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TaskHistory is an immutable field-level diff snapshot written
// alongside an action whenever persisted task fields change.
// OldValues and NewValues hold only the fields that differ.
type TaskHistory struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID         `gorm:"type:uuid;index;not null" json:"task_id"`
	Action    string            `gorm:"type:text;not null" json:"action"`
	OldValues datatypes.JSONMap `gorm:"type:json" json:"old_values"`
	NewValues datatypes.JSONMap `gorm:"type:json" json:"new_values"`
	ActorID   uuid.UUID         `gorm:"type:uuid;index;not null" json:"actor_id"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
}

type TaskHistories []*TaskHistory
