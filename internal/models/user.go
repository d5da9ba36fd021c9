package models

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates the organizational tiers a user can hold.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleSupervisor Role = "supervisor"
	RoleDirector   Role = "director"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Role           Role      `gorm:"type:text;index;not null" json:"role"`
	CanRevert      bool      `gorm:"not null;default:false" json:"can_revert"`
	CanAcknowledge bool      `gorm:"not null;default:false" json:"can_acknowledge"`
	BroadcastOptIn bool      `gorm:"index;not null;default:false" json:"broadcast_opt_in"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

type Users []*User
