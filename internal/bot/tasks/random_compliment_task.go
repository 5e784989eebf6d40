package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/edgard/complimentbot/internal/action"
	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/selector"
)

// newRandomComplimentTask direct-messages a compliment to a random member of the
// configured group and announces it in the broadcast channel.
//
// A tick whose group or channel cannot be resolved is skipped; the next tick retries.
// Nothing a single tick hits is returned as an error, so one bad tick never stops the job.
func newRandomComplimentTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "random_compliment")
	groupID := deps.Config.GroupID
	channelID := deps.Config.BroadcastChannelID

	return func(ctx context.Context) error {
		group, err := deps.Gateway.ResolveGroup(ctx, groupID)
		if err != nil {
			log.WarnContext(ctx, "Group unavailable, skipping tick", "group_id", groupID, "error", err)
			return nil
		}
		channel, err := deps.Gateway.ResolveChannel(ctx, groupID, channelID)
		if err != nil {
			log.WarnContext(ctx, "Channel unavailable, skipping tick", "channel_id", channelID, "error", err)
			return nil
		}

		// Bots cannot receive direct messages.
		humans := lo.Filter(group.Members, func(m gateway.Member, _ int) bool { return !m.Bot })
		member, err := deps.Selector.PickMember(humans)
		if err != nil {
			return skipEmptyPool(ctx, deps, "member", err)
		}
		text, err := deps.Selector.PickCompliment(deps.Config.Compliments)
		if err != nil {
			return skipEmptyPool(ctx, deps, "compliment", err)
		}

		a := action.Compose(
			action.SendDirectMessage(member, text),
			action.SendChannelMessageTo(channel.ID, fmt.Sprintf("Sent a compliment to %s.", member.Mention)),
		)
		results := action.Deliver(ctx, deps.Gateway, channel.ID, a)
		for _, res := range action.Failed(results) {
			log.WarnContext(ctx, "Delivery failed", "error", res.Err)
		}

		log.InfoContext(ctx, "Sent random compliment", "member_id", member.ID, "channel_id", channel.ID)
		return nil
	}
}

func skipEmptyPool(ctx context.Context, deps TaskDeps, pool string, err error) error {
	if errors.Is(err, selector.ErrEmptyPool) {
		deps.Logger.WarnContext(ctx, "Nothing to pick, skipping tick", "task", "random_compliment", "pool", pool)
		return nil
	}
	return fmt.Errorf("picking %s: %w", pool, err)
}
