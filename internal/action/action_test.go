package action_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgard/complimentbot/internal/action"
	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/gateway/gatewaytest"
)

func TestCompose(t *testing.T) {
	t.Parallel()

	bob := gateway.Member{ID: "42", Name: "bob"}
	a := action.Compose(
		action.SendDirectMessage(bob, "you rock"),
		action.SendChannelMessage("Compliment sent to bob"),
	)

	require.Len(t, a.Sends, 2)
	require.Equal(t, action.DirectMessage, a.Sends[0].Kind)
	require.Equal(t, "42", a.Sends[0].Recipient.ID)
	require.Equal(t, action.ChannelMessage, a.Sends[1].Kind)
	require.Empty(t, a.Sends[1].ChannelID)
	require.False(t, a.Empty())
	require.True(t, action.Action{}.Empty())
}

func TestDeliver(t *testing.T) {
	t.Parallel()

	fake := gatewaytest.NewFake()
	bob := gateway.Member{ID: "42", Name: "bob"}
	a := action.Compose(
		action.SendDirectMessage(bob, "you rock"),
		action.SendChannelMessage("reply"),
		action.SendChannelMessageTo("announcements", "notice"),
	)

	results := action.Deliver(context.Background(), fake, "general", a)

	require.Len(t, results, 3)
	require.Empty(t, action.Failed(results))
	require.Equal(t, []gatewaytest.Sent{
		{Direct: true, Target: "42", Text: "you rock"},
		{Target: "general", Text: "reply"},
		{Target: "announcements", Text: "notice"},
	}, fake.Sent())
}

func TestDeliver_FailedDirectMessageDoesNotStopChannelMessage(t *testing.T) {
	t.Parallel()

	fake := gatewaytest.NewFake()
	fake.Block("42")
	bob := gateway.Member{ID: "42", Name: "bob"}

	results := action.Deliver(context.Background(), fake, "general", action.Compose(
		action.SendDirectMessage(bob, "you rock"),
		action.SendChannelMessage("ack"),
	))

	failed := action.Failed(results)
	require.Len(t, failed, 1)

	var deliveryErr *gateway.DeliveryError
	require.True(t, errors.As(failed[0].Err, &deliveryErr))
	require.True(t, deliveryErr.Direct)
	require.Equal(t, "42", deliveryErr.Target)
	require.ErrorIs(t, failed[0].Err, gatewaytest.ErrBlocked)

	require.Equal(t, []gatewaytest.Sent{{Target: "general", Text: "ack"}}, fake.Sent())
}

func TestDeliver_KeepsSendOrderWhenEarlierSendIsSlow(t *testing.T) {
	t.Parallel()

	fake := gatewaytest.NewFake()
	fake.SendDelay = func(s gatewaytest.Sent) time.Duration {
		if s.Direct || s.Text == "first" {
			return 30 * time.Millisecond
		}
		return 0
	}
	bob := gateway.Member{ID: "42", Name: "bob"}

	results := action.Deliver(context.Background(), fake, "general", action.Compose(
		action.SendChannelMessage("first"),
		action.SendChannelMessage("second"),
		action.SendDirectMessage(bob, "you rock"),
		action.SendChannelMessage("Compliment sent to bob"),
	))

	require.Empty(t, action.Failed(results))
	require.Equal(t, []gatewaytest.Sent{
		{Target: "general", Text: "first"},
		{Target: "general", Text: "second"},
		{Direct: true, Target: "42", Text: "you rock"},
		{Target: "general", Text: "Compliment sent to bob"},
	}, fake.Sent())
}
