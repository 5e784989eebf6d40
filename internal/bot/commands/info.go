package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/complimentbot/internal/action"
	"github.com/edgard/complimentbot/internal/config"
)

func newPingHandler() HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		ms := float64(req.Latency) / float64(time.Millisecond)
		return action.SendChannelMessage(fmt.Sprintf("Pong! Latency: %.2fms", ms)), nil
	}
}

func newEchoHandler() HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		return action.SendChannelMessage(req.Invocation.Text(0)), nil
	}
}

func newBotInfoHandler(deps Deps) HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		return action.SendChannelMessage(fmt.Sprintf("Bot Name: %s\nID: %s\nPrefix: %s",
			req.Self.Name, req.Self.ID, deps.Config.CommandPrefix)), nil
	}
}

func newVersionHandler(deps Deps) HandlerFunc {
	return func(context.Context, Request) (action.Action, error) {
		return action.SendChannelMessage("Bot Version: " + orUnknown(deps.Config.Metadata.Version)), nil
	}
}

// newUptimeHandler measures uptime from the injected process start time and the request clock.
func newUptimeHandler(deps Deps) HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		uptime := req.Now.Sub(deps.Process.StartTime).Seconds()
		return action.SendChannelMessage(fmt.Sprintf("Uptime: %.2f seconds", uptime)), nil
	}
}

// newInviteHandler prefers the configured invite URL over the one derived by the gateway.
func newInviteHandler(deps Deps) HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		url := deps.Config.Metadata.InviteURL
		if url == "" {
			url = req.Self.InviteURL
		}
		return action.SendChannelMessage("Invite link: " + orUnknown(url)), nil
	}
}

func newGitHubHandler(deps Deps) HandlerFunc {
	return func(context.Context, Request) (action.Action, error) {
		return action.SendChannelMessage("GitHub Repository: " + orUnknown(deps.Config.Metadata.RepoURL)), nil
	}
}

func orUnknown(s string) string {
	if s == "" {
		return config.DefaultUnknown
	}
	return s
}
