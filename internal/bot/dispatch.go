package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/edgard/complimentbot/internal/action"
	"github.com/edgard/complimentbot/internal/bot/commands"
	"github.com/edgard/complimentbot/internal/config"
	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/keyword"
	"github.com/edgard/complimentbot/internal/selector"
)

// HandleMessage answers keyword triggers and runs the command in msg, if any.
// It never returns an error: every failure is logged or reported to the channel.
func (b *Bot) HandleMessage(ctx context.Context, msg gateway.InboundMessage) {
	if msg.IsFromSelf {
		return
	}

	log := b.logger.With(
		"event_id", uuid.NewString(),
		"channel_id", msg.ChannelID,
		"author_id", msg.AuthorID,
	)

	b.replyToKeywords(ctx, log, msg)
	b.runCommand(ctx, log, msg)
}

func (b *Bot) replyToKeywords(ctx context.Context, log *slog.Logger, msg gateway.InboundMessage) {
	replies := keyword.Match(msg.Text, b.cfg.KeywordResponses)
	if len(replies) == 0 {
		return
	}

	var a action.Action
	if b.cfg.KeywordReplyMode == config.ReplyMerge {
		a = action.SendChannelMessage(strings.Join(replies, "\n"))
	} else {
		for _, reply := range replies {
			a = action.Compose(a, action.SendChannelMessage(reply))
		}
	}

	log.DebugContext(ctx, "Keyword triggered", "replies", len(replies))
	b.deliver(ctx, log, msg.ChannelID, a)
}

func (b *Bot) runCommand(ctx context.Context, log *slog.Logger, msg gateway.InboundMessage) {
	inv, ok := commands.Parse(msg.Text, b.router.Prefix())
	if !ok {
		return
	}
	cmd, ok := b.router.Lookup(inv.Name)
	if !ok {
		log.DebugContext(ctx, "Ignoring unknown command", "command", inv.Name)
		return
	}
	log = log.With("command", cmd.Name)

	author := msg.Author
	if author.ID == "" {
		author.ID = msg.AuthorID
	}
	env := commands.Env{
		ChannelID: msg.ChannelID,
		GroupID:   msg.GroupID,
		Author:    author,
		Self:      b.gateway.Self(),
		Latency:   b.gateway.Latency(),
		Now:       b.now(),
		Resolver:  b.gateway,
	}

	if cmd.NeedsGroup && msg.GroupID != "" {
		group, err := b.gateway.ResolveGroup(ctx, msg.GroupID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to resolve group", "group_id", msg.GroupID, "error", err)
			b.deliver(ctx, log, msg.ChannelID, action.SendChannelMessage(b.cfg.Messages.GeneralError))
			return
		}
		env.Group = group
	}

	log.InfoContext(ctx, "Dispatching command")
	a, err := b.router.Dispatch(ctx, inv, env)
	if err != nil {
		a = b.errorReply(ctx, log, err)
	}
	b.deliver(ctx, log, msg.ChannelID, a)
}

// errorReply maps a dispatch failure to what the invoker is told.
func (b *Bot) errorReply(ctx context.Context, log *slog.Logger, err error) action.Action {
	msgs := b.cfg.Messages

	if commands.IsUserError(err) {
		log.InfoContext(ctx, "Command rejected", "error", err)
	}

	var argErr *commands.ArgumentError
	switch {
	case errors.Is(err, commands.ErrUnknownCommand):
		return action.Action{}
	case errors.As(err, &argErr):
		return action.SendChannelMessage(fill(msgs.Usage, argErr.Usage))
	case errors.Is(err, commands.ErrGroupOnly):
		return action.SendChannelMessage(msgs.GroupOnly)
	case errors.Is(err, selector.ErrEmptyPool):
		log.WarnContext(ctx, "Command had nothing to pick from", "error", err)
		return action.SendChannelMessage(msgs.EmptyPool)
	default:
		log.ErrorContext(ctx, "Command failed", "error", err)
		return action.SendChannelMessage(msgs.GeneralError)
	}
}

// deliver performs a and, when asked to, tells the channel about direct messages that failed.
func (b *Bot) deliver(ctx context.Context, log *slog.Logger, channelID string, a action.Action) {
	if a.Empty() {
		return
	}

	var notices []string
	for _, res := range action.Failed(action.Deliver(ctx, b.gateway, channelID, a)) {
		log.WarnContext(ctx, "Delivery failed", "error", res.Err)

		var deliveryErr *gateway.DeliveryError
		if a.ReportFailures && errors.As(res.Err, &deliveryErr) && deliveryErr.Direct {
			name := res.Send.Recipient.Name
			if name == "" {
				name = res.Send.Recipient.ID
			}
			notices = append(notices, fill(b.cfg.Messages.DeliveryFailed, name))
		}
	}

	for _, notice := range notices {
		if err := b.gateway.SendChannelMessage(ctx, channelID, notice); err != nil {
			log.ErrorContext(ctx, "Failed to report delivery failure", "error", err)
		}
	}
}

// fill substitutes arg into a configured message template. Templates without a
// verb get arg appended.
func fill(template, arg string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, arg)
	}
	return template + " " + arg
}
