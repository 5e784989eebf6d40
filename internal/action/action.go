// Package action describes outbound effects produced by commands and tasks
// and delivers them through a gateway.
package action

import (
	"context"

	"github.com/samber/lo"

	"github.com/edgard/complimentbot/internal/gateway"
)

// Kind identifies the type of a single send.
type Kind int

const (
	// ChannelMessage posts text into a channel.
	ChannelMessage Kind = iota + 1
	// DirectMessage sends text privately to one member.
	DirectMessage
)

// Send is one outbound message.
// For channel messages an empty ChannelID means the channel the triggering message came from.
type Send struct {
	Kind      Kind
	ChannelID string
	Recipient gateway.Member
	Text      string
}

// Action is an ordered set of sends. Sends are delivered one after another in
// order; a failed send does not stop the ones after it.
type Action struct {
	Sends []Send
	// ReportFailures asks the caller to tell the invoking channel about failed direct messages.
	ReportFailures bool
}

// SendChannelMessage replies in the invoking channel.
func SendChannelMessage(text string) Action {
	return Action{Sends: []Send{{Kind: ChannelMessage, Text: text}}}
}

// SendChannelMessageTo posts into a specific channel.
func SendChannelMessageTo(channelID, text string) Action {
	return Action{Sends: []Send{{Kind: ChannelMessage, ChannelID: channelID, Text: text}}}
}

// SendDirectMessage privately messages recipient.
func SendDirectMessage(recipient gateway.Member, text string) Action {
	return Action{Sends: []Send{{Kind: DirectMessage, Recipient: recipient, Text: text}}}
}

// Compose concatenates the sends of several actions, keeping their order.
func Compose(actions ...Action) Action {
	var composed Action
	for _, a := range actions {
		composed.Sends = append(composed.Sends, a.Sends...)
		composed.ReportFailures = composed.ReportFailures || a.ReportFailures
	}
	return composed
}

// Empty reports whether the action has nothing to send.
func (a Action) Empty() bool {
	return len(a.Sends) == 0
}

// Result is the outcome of one send.
type Result struct {
	Send Send
	Err  error
}

// Deliver performs the sends of a in order, continuing past failures.
// Results are returned in send order; failed sends carry a *gateway.DeliveryError.
func Deliver(ctx context.Context, sender gateway.Sender, replyChannelID string, a Action) []Result {
	results := make([]Result, 0, len(a.Sends))
	for _, send := range a.Sends {
		results = append(results, Result{
			Send: send,
			Err:  deliverOne(ctx, sender, replyChannelID, send),
		})
	}
	return results
}

func deliverOne(ctx context.Context, sender gateway.Sender, replyChannelID string, send Send) error {
	switch send.Kind {
	case DirectMessage:
		if err := sender.SendDirectMessage(ctx, send.Recipient.ID, send.Text); err != nil {
			return &gateway.DeliveryError{Target: send.Recipient.ID, Direct: true, Err: err}
		}
	default:
		channelID := send.ChannelID
		if channelID == "" {
			channelID = replyChannelID
		}
		if err := sender.SendChannelMessage(ctx, channelID, send.Text); err != nil {
			return &gateway.DeliveryError{Target: channelID, Err: err}
		}
	}
	return nil
}

// Failed returns only the results that carry an error.
func Failed(results []Result) []Result {
	return lo.Filter(results, func(r Result, _ int) bool { return r.Err != nil })
}
