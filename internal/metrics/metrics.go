package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TasksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsdesk_tasks_created_total",
			Help: "Total number of tasks created, by creation strategy.",
		},
		[]string{"strategy"},
	)

	TaskActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsdesk_task_actions_total",
			Help: "Total number of committed task actions by type.",
		},
		[]string{"action"},
	)

	TaskActionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsdesk_task_action_failures_total",
			Help: "Total number of rejected task actions by failure kind.",
		},
		[]string{"action", "kind"},
	)

	NotificationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsdesk_notification_failures_total",
			Help: "Total number of best-effort notification failures by channel.",
		},
		[]string{"channel"},
	)

	RemindersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "opsdesk_reminders_total",
			Help: "Total number of acknowledgment reminders dispatched.",
		},
	)
)

// Register registers all custom opsdesk metrics with the default
// Prometheus registry.
func Register() {
	prometheus.MustRegister(
		TasksCreatedTotal,
		TaskActionsTotal,
		TaskActionFailuresTotal,
		NotificationFailuresTotal,
		RemindersTotal,
	)
}
