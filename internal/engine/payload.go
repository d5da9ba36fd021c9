package engine

import (
	"strings"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
)

// Payload is the closed union of action payloads. One type per
// action, each carrying exactly the fields that action needs; the
// action type is derived from the payload, never passed separately.
type Payload interface {
	ActionType() models.ActionType
	validate() error
}

// Submit marks the task complete, pending leadership acknowledgment.
// Only the task's current internal holder may submit.
type Submit struct {
	ReferenceNumber string
	Description     string
}

func (Submit) ActionType() models.ActionType { return models.ActionSubmitted }
func (Submit) validate() error               { return nil }

// Forward reassigns the task to a new internal holder or an external
// contact. Exactly one target must be set.
type Forward struct {
	ToUserID    *uuid.UUID
	ToEmail     string
	ToName      string
	Description string
}

func (Forward) ActionType() models.ActionType { return models.ActionForwarded }

func (p Forward) validate() error {
	targets := 0
	if p.ToUserID != nil {
		targets++
	}
	if strings.TrimSpace(p.ToEmail) != "" {
		targets++
	}
	if strings.TrimSpace(p.ToName) != "" {
		targets++
	}

	if targets != 1 {
		return fault.Validationf("forward requires exactly one target, got %d", targets)
	}
	return nil
}

// Close moves the task to its terminal state.
type Close struct {
	Description string
}

func (Close) ActionType() models.ActionType { return models.ActionClosed }
func (Close) validate() error               { return nil }

// Revert moves the task back to active.
type Revert struct {
	Description string
}

func (Revert) ActionType() models.ActionType { return models.ActionReverted }
func (Revert) validate() error               { return nil }

// Acknowledge records leadership sign-off on a completed task.
type Acknowledge struct {
	Description string
}

func (Acknowledge) ActionType() models.ActionType { return models.ActionAcknowledged }
func (Acknowledge) validate() error               { return nil }

// Reject returns a completed task to the submitter for rework.
type Reject struct {
	Reason string
}

func (Reject) ActionType() models.ActionType { return models.ActionRejected }

func (p Reject) validate() error {
	if strings.TrimSpace(p.Reason) == "" {
		return fault.Validationf("a rejection reason is required")
	}
	return nil
}
