package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/complimentbot/internal/action"
	"github.com/edgard/complimentbot/internal/config"
	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/selector"
)

// ProcessContext holds facts fixed at process start.
type ProcessContext struct {
	StartTime time.Time
}

// Deps provides dependencies for command handlers.
type Deps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Selector *selector.Selector
	Process  ProcessContext
}

// Env is the per-message context a command runs in.
type Env struct {
	ChannelID string
	GroupID   string
	Author    gateway.Member
	// Group is nil for direct messages or when the snapshot could not be resolved.
	Group    *gateway.Group
	Self     gateway.Identity
	Latency  time.Duration
	Now      time.Time
	Resolver gateway.Resolver
}

// Request is what a handler receives: the message context plus a resolved invocation.
type Request struct {
	Env
	Invocation Invocation
}

// HandlerFunc maps a request to the action to perform.
type HandlerFunc func(ctx context.Context, req Request) (action.Action, error)
