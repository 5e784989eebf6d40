package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/complimentbot/internal/config"
)

// ScheduledTaskFunc is the signature of every scheduled task.
// The context is cancelled on shutdown.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the registered tasks keyed by the name used under scheduler.tasks.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	tasks := map[string]ScheduledTaskFunc{
		config.TaskRandomCompliment: newRandomComplimentTask(deps),
	}
	if deps.Store != nil {
		tasks[config.TaskSQLMaintenance] = newSQLMaintenanceTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
