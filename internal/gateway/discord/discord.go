// Package discord connects the bot to Discord through discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/edgard/complimentbot/internal/gateway"
)

const membersPageSize = 1000

// Gateway is a Discord bot connection.
type Gateway struct {
	session     *discordgo.Session
	permissions int64
	logger      *slog.Logger

	mu        sync.RWMutex
	self      gateway.Identity
	onReady   func(ctx context.Context, self gateway.Identity)
	onMessage func(ctx context.Context, msg gateway.InboundMessage)
}

// New creates a Discord gateway. invitePermissions is embedded in the derived invite URL.
func New(token string, invitePermissions int64, logger *slog.Logger) (*Gateway, error) {
	if token == "" {
		return nil, errors.New("discord bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildPresences |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	session.State.TrackPresences = true
	session.State.TrackMembers = true

	return &Gateway{
		session:     session,
		permissions: invitePermissions,
		logger:      logger.With("component", "discord_gateway"),
	}, nil
}

func (g *Gateway) OnReady(fn func(ctx context.Context, self gateway.Identity)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onReady = fn
}

func (g *Gateway) OnMessage(fn func(ctx context.Context, msg gateway.InboundMessage)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onMessage = fn
}

func (g *Gateway) Self() gateway.Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.self
}

// Latency is the last heartbeat round trip.
func (g *Gateway) Latency() time.Duration {
	return g.session.HeartbeatLatency()
}

// Run opens the websocket and blocks until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	removeReady := g.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		self := gateway.Identity{ID: r.User.ID, Name: r.User.Username, InviteURL: inviteURL(r.User.ID, g.permissions)}

		g.mu.Lock()
		g.self = self
		onReady := g.onReady
		g.mu.Unlock()

		g.logger.InfoContext(ctx, "Discord session ready", "user", r.User.Username, "guilds", len(r.Guilds))
		if onReady != nil {
			onReady(ctx, self)
		}
	})
	defer removeReady()

	removeMessage := g.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}
		g.mu.RLock()
		selfID, onMessage := g.self.ID, g.onMessage
		g.mu.RUnlock()

		msg := toInbound(m, selfID)
		g.logger.DebugContext(ctx, "Discord message received",
			"message_id", msg.ID, "channel_id", msg.ChannelID, "guild_id", msg.GroupID,
			"author_id", msg.AuthorID, "content_len", len(msg.Text))
		if onMessage != nil {
			onMessage(ctx, msg)
		}
	})
	defer removeMessage()

	// GUILD_CREATE only carries part of the member list of large guilds. Ask
	// for the rest so the state cache ends up holding every member.
	removeGuild := g.session.AddHandler(func(s *discordgo.Session, gc *discordgo.GuildCreate) {
		if gc.Guild == nil || gc.Unavailable || membersComplete(gc.Guild) {
			return
		}
		g.logger.DebugContext(ctx, "Requesting guild members",
			"guild_id", gc.ID, "cached", len(gc.Members), "total", gc.MemberCount)
		if err := s.RequestGuildMembers(gc.ID, "", 0, "", false); err != nil {
			g.logger.WarnContext(ctx, "Failed to request guild members", "guild_id", gc.ID, "error", err)
		}
	})
	defer removeGuild()

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("discord connect: %w", err)
	}
	g.logger.Info("Discord connected")

	<-ctx.Done()
	g.logger.Info("Discord disconnecting")
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("discord close: %w", err)
	}
	return nil
}

func (g *Gateway) SendChannelMessage(ctx context.Context, channelID, text string) error {
	for _, chunk := range gateway.SplitMessage(text, maxMessageLen) {
		if _, err := g.session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send to channel %s: %w", channelID, err)
		}
	}
	return nil
}

func (g *Gateway) SendDirectMessage(ctx context.Context, userID, text string) error {
	ch, err := g.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open direct channel with %s: %w", userID, err)
	}
	return g.SendChannelMessage(ctx, ch.ID, text)
}

// ResolveGroup builds a guild snapshot from the state cache, falling back to
// the REST API for anything the cache does not hold. A cached member list
// shorter than the guild's member count is replaced by a full REST listing.
func (g *Gateway) ResolveGroup(ctx context.Context, groupID string) (*gateway.Group, error) {
	guild, err := g.session.State.Guild(groupID)
	if err != nil {
		guild, err = g.session.GuildWithCounts(groupID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, g.wrap(fmt.Sprintf("guild %s", groupID), err)
		}
	}

	group := &gateway.Group{
		ID:          guild.ID,
		Name:        guild.Name,
		MemberCount: guild.MemberCount,
		OnlineCount: onlineCount(guild.Presences),
	}
	if group.MemberCount == 0 {
		group.MemberCount = guild.ApproximateMemberCount
	}
	if len(guild.Presences) == 0 {
		group.OnlineCount = guild.ApproximatePresenceCount
	}

	members := guild.Members
	if !membersComplete(guild) {
		if members, err = g.fetchMembers(ctx, groupID); err != nil {
			return nil, g.wrap(fmt.Sprintf("members of guild %s", groupID), err)
		}
	}
	for _, m := range members {
		group.Members = append(group.Members, toMember(m, g.presence(groupID, m)))
	}

	channels := guild.Channels
	if len(channels) == 0 {
		if channels, err = g.session.GuildChannels(groupID, discordgo.WithContext(ctx)); err != nil {
			return nil, g.wrap(fmt.Sprintf("channels of guild %s", groupID), err)
		}
	}
	for _, c := range channels {
		group.Channels = append(group.Channels, toChannel(c))
	}

	return group, nil
}

func (g *Gateway) ResolveChannel(ctx context.Context, groupID, channelID string) (*gateway.Channel, error) {
	ch, err := g.session.State.Channel(channelID)
	if err != nil {
		ch, err = g.session.Channel(channelID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, g.wrap(fmt.Sprintf("channel %s", channelID), err)
		}
	}
	if ch.GuildID != groupID {
		return nil, fmt.Errorf("channel %s is not in guild %s: %w", channelID, groupID, gateway.ErrNotFound)
	}
	c := toChannel(ch)
	return &c, nil
}

// ResolveMember accepts mentions, raw ids and user, global or nick names.
func (g *Gateway) ResolveMember(ctx context.Context, groupID, reference string) (*gateway.Member, error) {
	if id, ok := snowflake(reference); ok {
		m, err := g.session.State.Member(groupID, id)
		if err != nil {
			m, err = g.session.GuildMember(groupID, id, discordgo.WithContext(ctx))
			if err != nil {
				return nil, g.wrap(fmt.Sprintf("member %s", reference), err)
			}
		}
		member := toMember(m, g.presence(groupID, m))
		return &member, nil
	}

	candidates, err := g.session.GuildMembersSearch(groupID, reference, 10, discordgo.WithContext(ctx))
	if err != nil {
		return nil, g.wrap(fmt.Sprintf("member %s", reference), err)
	}
	for _, m := range candidates {
		if matchesName(m, reference) {
			member := toMember(m, g.presence(groupID, m))
			return &member, nil
		}
	}
	return nil, fmt.Errorf("member %s: %w", reference, gateway.ErrNotFound)
}

func (g *Gateway) fetchMembers(ctx context.Context, guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := g.session.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < membersPageSize {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (g *Gateway) presence(guildID string, m *discordgo.Member) discordgo.Status {
	if m == nil || m.User == nil {
		return ""
	}
	p, err := g.session.State.Presence(guildID, m.User.ID)
	if err != nil {
		return discordgo.StatusOffline
	}
	return p.Status
}

func (g *Gateway) wrap(what string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", what, gateway.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

var _ gateway.Gateway = (*Gateway)(nil)
