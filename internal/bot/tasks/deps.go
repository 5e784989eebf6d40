// Package tasks implements the bot's scheduled tasks and their registration.
package tasks

import (
	"log/slog"

	"github.com/edgard/complimentbot/internal/config"
	"github.com/edgard/complimentbot/internal/database"
	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/selector"
)

// TaskDeps contains the dependencies shared by scheduled tasks.
// Store is optional; tasks that need it are only registered when it is set.
type TaskDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Gateway  gateway.Gateway
	Selector *selector.Selector
	Store    database.Store
}
