package permission

import "github.com/opsdesk-cloud/opsdesk/internal/models"

// Pure predicates over a user's role and capability flags. Every
// permission-gated branch in the task engine goes through this
// package; nothing else inspects the flags directly.

// CanCloseTask reports whether the role may close a task outright.
func CanCloseTask(role models.Role) bool {
	switch role {
	case models.RoleSupervisor, models.RoleDirector, models.RoleAdmin:
		return true
	default:
		return false
	}
}

// CanRevertTask reports whether the user may move a task back to
// active. Directors and admins always can; others need the explicit
// capability flag.
func CanRevertTask(role models.Role, canRevert bool) bool {
	switch role {
	case models.RoleDirector, models.RoleAdmin:
		return true
	default:
		return canRevert
	}
}

// CanAcknowledgeTask reports whether the user may sign off on, or
// reject, a completed task.
func CanAcknowledgeTask(role models.Role, canAcknowledge bool) bool {
	switch role {
	case models.RoleDirector, models.RoleAdmin:
		return true
	default:
		return canAcknowledge
	}
}

// IsLeadership reports whether the role sits in the tier notified
// when a task is submitted for acknowledgment.
func IsLeadership(role models.Role) bool {
	switch role {
	case models.RoleSupervisor, models.RoleDirector, models.RoleAdmin:
		return true
	default:
		return false
	}
}
