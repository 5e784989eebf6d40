package gateway_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edgard/complimentbot/internal/gateway"
)

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"short"}, gateway.SplitMessage("short", 10))

	lines := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8)
	require.Equal(t, []string{strings.Repeat("a", 8) + "\n", strings.Repeat("b", 8)}, gateway.SplitMessage(lines, 10))

	long := strings.Repeat("x", 25)
	chunks := gateway.SplitMessage(long, 10)
	require.Len(t, chunks, 3)
	require.Equal(t, long, strings.Join(chunks, ""))

	// "é" is two bytes; a 5-byte limit must not split it.
	accents := strings.Repeat("é", 5)
	for _, chunk := range gateway.SplitMessage(accents, 5) {
		require.LessOrEqual(t, len(chunk), 5)
		require.Equal(t, strings.Repeat("é", len(chunk)/2), chunk)
	}
}

func TestDeliveryError(t *testing.T) {
	t.Parallel()

	cause := gateway.ErrNotFound
	direct := &gateway.DeliveryError{Target: "u1", Direct: true, Err: cause}
	require.ErrorIs(t, direct, cause)
	require.Contains(t, direct.Error(), "direct message to u1")

	channel := &gateway.DeliveryError{Target: "c1", Err: cause}
	require.Contains(t, channel.Error(), "channel c1")
}
