package commands

import (
	"context"
	"fmt"

	"github.com/edgard/complimentbot/internal/action"
)

// NewComplimentHandler returns the handler for the compliment command.
// It direct-messages a random compliment to the target and acknowledges in the channel.
func NewComplimentHandler(deps Deps) HandlerFunc {
	return complimentHandler{deps}.Handle
}

type complimentHandler struct {
	deps Deps
}

func (h complimentHandler) Handle(ctx context.Context, req Request) (action.Action, error) {
	log := h.deps.Logger.With("command", "compliment")

	if req.Group == nil {
		return action.Action{}, ErrGroupOnly
	}

	target := req.Invocation.Member(0)
	text, err := h.deps.Selector.PickCompliment(h.deps.Config.Compliments)
	if err != nil {
		log.ErrorContext(ctx, "No compliment available", "error", err)
		return action.Action{}, fmt.Errorf("picking compliment: %w", err)
	}

	log.InfoContext(ctx, "Sending compliment", "target_id", target.ID, "author_id", req.Author.ID)

	a := action.Compose(
		action.SendDirectMessage(target, text),
		action.SendChannelMessage(fmt.Sprintf("Compliment sent to %s", target.Name)),
	)
	a.ReportFailures = true
	return a, nil
}
