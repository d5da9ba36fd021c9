package models

import "time"

// RecordCounter backs the atomic record-number allocator. One row per
// record kind ("task", "receive"); Value is the last number issued.
type RecordCounter struct {
	Kind      string    `gorm:"primaryKey;type:text" json:"kind"`
	Value     int64     `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
