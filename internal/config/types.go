// Package config loads, defaults and validates the bot configuration.
// The configuration is read once at start-up and shared read-only afterwards.
package config

import (
	"errors"
	"time"

	"github.com/edgard/complimentbot/internal/keyword"
)

// ErrConfig marks every configuration failure; loading errors wrap it.
var ErrConfig = errors.New("configuration error")

// Keyword reply policies.
const (
	ReplyEach  = "each"
	ReplyMerge = "merge"
)

// Supported platforms.
const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
)

// Config is the immutable application configuration.
type Config struct {
	Platform string `mapstructure:"platform" validate:"oneof=discord telegram"`
	BotToken string `mapstructure:"bot_token" validate:"required"`

	GroupID            string `mapstructure:"guild_id"                      validate:"required"`
	BroadcastChannelID string `mapstructure:"random_compliments_channel_id" validate:"required"`

	Compliments      []string      `mapstructure:"compliments" validate:"required,min=1,dive,required"`
	KeywordResponses keyword.Table `mapstructure:"-"`
	KeywordReplyMode string        `mapstructure:"keyword_reply_mode" validate:"oneof=each merge"`
	CommandPrefix    string        `mapstructure:"command_prefix"     validate:"required"`

	Metadata BotMetadata `mapstructure:",squash"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `mapstructure:"log_json"`

	DatabasePath          string `mapstructure:"database_path"`
	MaxConcurrentHandlers int    `mapstructure:"max_concurrent_handlers" validate:"min=1,max=1000"`

	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// BotMetadata holds the operator-provided facts about the bot reported by info commands.
type BotMetadata struct {
	Version           string `mapstructure:"bot_version"`
	RepoURL           string `mapstructure:"github_repo"`
	InviteURL         string `mapstructure:"invite_url"`
	InvitePermissions int64  `mapstructure:"invite_permissions" validate:"min=0"`
}

// SchedulerConfig configures the recurring tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig configures one scheduled task. Interval takes precedence over Schedule.
type TaskConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Schedule string        `mapstructure:"schedule"`
}

// MessagesConfig holds the user-facing texts that are not command replies.
type MessagesConfig struct {
	Usage          string `mapstructure:"usage"           validate:"required"`
	GroupOnly      string `mapstructure:"group_only"      validate:"required"`
	EmptyPool      string `mapstructure:"empty_pool"      validate:"required"`
	DeliveryFailed string `mapstructure:"delivery_failed" validate:"required"`
	GeneralError   string `mapstructure:"general_error"   validate:"required"`
}
