package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/edgard/complimentbot/internal/action"
	"github.com/edgard/complimentbot/internal/gateway"
)

const joinedAtLayout = "2006-01-02 15:04:05 MST"

func newServerInfoHandler() HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		if req.Group == nil {
			return action.Action{}, ErrGroupOnly
		}
		total := req.Group.MemberCount
		if total == 0 {
			total = len(req.Group.Members)
		}
		return action.SendChannelMessage(fmt.Sprintf("Server: %s\nTotal Members: %d\nOnline Members: %d",
			req.Group.Name, total, req.Group.OnlineCount)), nil
	}
}

func newUserInfoHandler() HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		m := req.Invocation.Member(0)

		status := m.Status
		if status == "" {
			status = "unknown"
		}
		joined := "Unknown"
		if !m.JoinedAt.IsZero() {
			joined = m.JoinedAt.UTC().Format(joinedAtLayout)
		}

		return action.SendChannelMessage(fmt.Sprintf("User: %s\nID: %s\nStatus: %s\nJoined Server: %s",
			m.Name, m.ID, status, joined)), nil
	}
}

func newListMembersHandler() HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		if req.Group == nil {
			return action.Action{}, ErrGroupOnly
		}
		names := lo.Map(req.Group.Members, func(m gateway.Member, _ int) string { return m.Name })
		return action.SendChannelMessage("Members in this server:\n" + strings.Join(names, "\n")), nil
	}
}

func newRandomUserHandler(deps Deps) HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		if req.Group == nil {
			return action.Action{}, ErrGroupOnly
		}
		m, err := deps.Selector.PickMember(req.Group.Members)
		if err != nil {
			return action.Action{}, fmt.Errorf("picking member: %w", err)
		}
		return action.SendChannelMessage("Random user: " + m.Mention), nil
	}
}

func newAvatarHandler() HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		m := req.Invocation.Member(0)
		url := m.AvatarURL
		if url == "" {
			url = "no avatar set"
		}
		return action.SendChannelMessage(fmt.Sprintf("Avatar of %s: %s", m.Name, url)), nil
	}
}

func newListChannelsHandler() HandlerFunc {
	return func(_ context.Context, req Request) (action.Action, error) {
		if req.Group == nil {
			return action.Action{}, ErrGroupOnly
		}
		text := lo.Filter(req.Group.Channels, func(c gateway.Channel, _ int) bool { return c.Text })
		names := lo.Map(text, func(c gateway.Channel, _ int) string { return c.Name })
		return action.SendChannelMessage("Text channels in this server:\n" + strings.Join(names, "\n")), nil
	}
}
