package models

import (
	"time"

	"github.com/google/uuid"
)

// Receive logs one piece of incoming correspondence. Tasks dispatched
// in response link back through Task.ReceiveID.
type Receive struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecordNumber int64      `gorm:"uniqueIndex;not null" json:"record_number"`
	Subject      string     `gorm:"not null" json:"subject"`
	Sender       string     `gorm:"not null" json:"sender"`
	Body         string     `json:"body,omitempty"`
	ReceivedAt   time.Time  `gorm:"not null;index" json:"received_at"`
	SuspenseDate *time.Time `json:"suspense_date,omitempty"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"created_by_id"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

type Receives []*Receive
