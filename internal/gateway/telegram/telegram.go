// Package telegram connects the bot to Telegram through go-telegram/bot.
//
// The Bot API cannot list the members of a group, so the gateway records
// everyone it sees speaking or joining in a roster store and answers member
// queries from it.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"

	"github.com/edgard/complimentbot/internal/database"
	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/logger"
)

const pollTimeout = time.Minute

// Gateway is a Telegram bot connection backed by a member roster.
type Gateway struct {
	bot     *bot.Bot
	store   database.Store
	latency *latencyClient
	logger  *slog.Logger

	mu        sync.RWMutex
	self      gateway.Identity
	selfID    int64
	onReady   func(ctx context.Context, self gateway.Identity)
	onMessage func(ctx context.Context, msg gateway.InboundMessage)
}

// New creates a Telegram gateway. Extra options are applied after the gateway's own.
func New(token string, store database.Store, log *slog.Logger, opts ...bot.Option) (*Gateway, error) {
	if token == "" {
		return nil, errors.New("telegram bot token cannot be empty")
	}
	if store == nil {
		return nil, errors.New("telegram gateway requires a roster store")
	}
	if log == nil {
		log = slog.Default()
	}

	g := &Gateway{
		store:   store,
		latency: newLatencyClient(pollTimeout),
		logger:  log.With("component", "telegram_gateway"),
	}

	options := append([]bot.Option{
		bot.WithDefaultHandler(g.handleUpdate),
		bot.WithMiddlewares(logger.Middleware(g.logger)),
		bot.WithHTTPClient(pollTimeout, g.latency),
	}, opts...)

	b, err := bot.New(token, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	g.bot = b
	return g, nil
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

// Latency is the round trip of the last Bot API call.
func (g *Gateway) Latency() time.Duration {
	return g.latency.Latency()
}

// Run identifies the bot and long-polls for updates until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	me, err := g.bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	self := gateway.Identity{ID: strconv.FormatInt(me.ID, 10), Name: me.Username, InviteURL: inviteURL(me.Username)}

	g.mu.Lock()
	g.self, g.selfID = self, me.ID
	onReady := g.onReady
	g.mu.Unlock()

	g.logger.InfoContext(ctx, "Telegram bot ready", "bot_id", me.ID, "bot_username", me.Username)
	if onReady != nil {
		onReady(ctx, self)
	}

	g.bot.Start(ctx)
	return nil
}

func (g *Gateway) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	g.remember(ctx, msg)

	g.mu.RLock()
	selfID, onMessage := g.selfID, g.onMessage
	g.mu.RUnlock()

	if msg.Text == "" || onMessage == nil {
		return
	}
	onMessage(ctx, toInbound(msg, selfID))
}

// remember records the sender and any joining users of a group message.
func (g *Gateway) remember(ctx context.Context, msg *models.Message) {
	if !isGroupChat(string(msg.Chat.Type)) {
		return
	}
	users := append([]models.User{*msg.From}, msg.NewChatMembers...)
	for _, u := range users {
		if err := g.store.UpsertMember(ctx, toRosterMember(msg.Chat.ID, u)); err != nil {
			g.logger.WarnContext(ctx, "Failed to record member", "chat_id", msg.Chat.ID, "user_id", u.ID, "error", err)
		}
	}
}

func (g *Gateway) SendChannelMessage(ctx context.Context, channelID, text string) error {
	return g.send(ctx, channelID, text)
}

// SendDirectMessage fails with a forbidden error unless the user has started a chat with the bot.
func (g *Gateway) SendDirectMessage(ctx context.Context, userID, text string) error {
	return g.send(ctx, userID, text)
}

func (g *Gateway) send(ctx context.Context, chatID, text string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	for _, chunk := range gateway.SplitMessage(text, maxMessageLen) {
		if _, err := g.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: id, Text: chunk}); err != nil {
			return fmt.Errorf("send to chat %d: %w", id, err)
		}
	}
	return nil
}

// ResolveGroup combines the chat's metadata with the roster. Online status is
// not available through the Bot API and is reported as zero.
func (g *Gateway) ResolveGroup(ctx context.Context, groupID string) (*gateway.Group, error) {
	chatID, err := parseChatID(groupID)
	if err != nil {
		return nil, err
	}
	chat, err := g.bot.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return nil, g.wrap(fmt.Sprintf("chat %d", chatID), err)
	}
	if !isGroupChat(string(chat.Type)) {
		return nil, fmt.Errorf("chat %d is not a group: %w", chatID, gateway.ErrNotFound)
	}

	rows, err := g.store.ListMembers(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("roster of chat %d: %w", chatID, err)
	}

	count, err := g.bot.GetChatMemberCount(ctx, &bot.GetChatMemberCountParams{ChatID: chatID})
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to get member count, using roster size", "chat_id", chatID, "error", err)
		count = len(rows)
	}

	return &gateway.Group{
		ID:          groupID,
		Name:        chat.Title,
		Members:     lo.Map(rows, func(m database.Member, _ int) gateway.Member { return fromRoster(m) }),
		Channels:    []gateway.Channel{{ID: groupID, GroupID: groupID, Name: chat.Title, Text: true}},
		MemberCount: count,
	}, nil
}

// ResolveChannel accepts only the group chat itself; Telegram groups have no sub-channels.
func (g *Gateway) ResolveChannel(ctx context.Context, groupID, channelID string) (*gateway.Channel, error) {
	if strings.TrimSpace(channelID) != strings.TrimSpace(groupID) {
		return nil, fmt.Errorf("channel %s is not chat %s: %w", channelID, groupID, gateway.ErrNotFound)
	}
	group, err := g.ResolveGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return &group.Channels[0], nil
}

// ResolveMember looks a numeric id or an @username up in the roster.
func (g *Gateway) ResolveMember(ctx context.Context, groupID, reference string) (*gateway.Member, error) {
	chatID, err := parseChatID(groupID)
	if err != nil {
		return nil, err
	}

	ref := strings.TrimPrefix(strings.TrimSpace(reference), "@")
	var row *database.Member
	if userID, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		row, err = g.store.GetMember(ctx, chatID, userID)
	} else {
		row, err = g.store.FindMemberByUsername(ctx, chatID, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", reference, err)
	}
	if row == nil {
		return nil, fmt.Errorf("member %s: %w", reference, gateway.ErrNotFound)
	}

	member := fromRoster(*row)
	return &member, nil
}

func (g *Gateway) wrap(what string, err error) error {
	if errors.Is(err, bot.ErrorBadRequest) || errors.Is(err, bot.ErrorNotFound) || errors.Is(err, bot.ErrorForbidden) {
		return fmt.Errorf("%s: %w: %w", what, gateway.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

var _ gateway.Gateway = (*Gateway)(nil)
