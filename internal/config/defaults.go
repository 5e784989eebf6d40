package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional settings.
const (
	DefaultPlatform              = PlatformDiscord
	DefaultCommandPrefix         = "!"
	DefaultKeywordReplyMode      = ReplyEach
	DefaultUnknown               = "Unknown"
	DefaultLogLevel              = "info"
	DefaultDatabasePath          = "storage.db"
	DefaultMaxConcurrentHandlers = 50

	DefaultComplimentInterval     = 10 * time.Minute
	DefaultSQLMaintenanceSchedule = "0 0 4 * * *"
)

// Task names known to the scheduler.
const (
	TaskRandomCompliment = "random_compliment"
	TaskSQLMaintenance   = "sql_maintenance"
)

// DefaultMessages are used when the configuration does not override them.
var DefaultMessages = MessagesConfig{
	Usage:          "Usage: %s",
	GroupOnly:      "This command only works inside a server.",
	EmptyPool:      "I have nothing to pick from right now.",
	DeliveryFailed: "I couldn't send a direct message to %s.",
	GeneralError:   "Something went wrong. Please try again later.",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("platform", DefaultPlatform)
	v.SetDefault("command_prefix", DefaultCommandPrefix)
	v.SetDefault("keyword_reply_mode", DefaultKeywordReplyMode)
	v.SetDefault("bot_version", DefaultUnknown)
	v.SetDefault("github_repo", DefaultUnknown)
	v.SetDefault("invite_url", "")
	v.SetDefault("invite_permissions", 0)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_json", false)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("max_concurrent_handlers", DefaultMaxConcurrentHandlers)

	v.SetDefault("scheduler.tasks."+TaskRandomCompliment+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskRandomCompliment+".interval", DefaultComplimentInterval)
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".schedule", DefaultSQLMaintenanceSchedule)

	v.SetDefault("messages.usage", DefaultMessages.Usage)
	v.SetDefault("messages.group_only", DefaultMessages.GroupOnly)
	v.SetDefault("messages.empty_pool", DefaultMessages.EmptyPool)
	v.SetDefault("messages.delivery_failed", DefaultMessages.DeliveryFailed)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
}
