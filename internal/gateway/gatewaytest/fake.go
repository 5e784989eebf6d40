// Package gatewaytest provides an in-memory gateway for tests.
package gatewaytest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/edgard/complimentbot/internal/gateway"
)

// ErrBlocked is returned for direct messages to recipients listed in Fake.BlockedDMs.
var ErrBlocked = errors.New("recipient does not accept direct messages")

// Sent is one recorded outbound message.
type Sent struct {
	Direct bool
	Target string
	Text   string
}

// Fake is a Gateway whose state tests set directly. It is safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	Groups     map[string]*gateway.Group
	Channels   map[string]*gateway.Channel
	BlockedDMs map[string]bool
	Identity   gateway.Identity
	Lag        time.Duration
	// SendDelay, when set, stalls each send by the returned duration before it is recorded.
	SendDelay func(Sent) time.Duration

	sent      []Sent
	onReady   func(ctx context.Context, self gateway.Identity)
	onMessage func(ctx context.Context, msg gateway.InboundMessage)
	inbound   chan gateway.InboundMessage
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{
		Groups:     make(map[string]*gateway.Group),
		Channels:   make(map[string]*gateway.Channel),
		BlockedDMs: make(map[string]bool),
		Identity:   gateway.Identity{ID: "bot", Name: "complimentbot", InviteURL: "https://example.com/invite"},
		inbound:    make(chan gateway.InboundMessage, 16),
	}
}

// SetGroup installs or removes (nil) a group snapshot.
func (f *Fake) SetGroup(id string, g *gateway.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g == nil {
		delete(f.Groups, id)
		return
	}
	f.Groups[id] = g
}

// SetChannel installs or removes (nil) a channel.
func (f *Fake) SetChannel(id string, c *gateway.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c == nil {
		delete(f.Channels, id)
		return
	}
	f.Channels[id] = c
}

// Block makes direct messages to userID fail.
func (f *Fake) Block(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BlockedDMs[userID] = true
}

// Sent returns a copy of everything sent so far.
func (f *Fake) Sent() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Sent(nil), f.sent...)
}

// Reset forgets recorded sends.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

// Emit delivers msg to the registered message callback once Run is active.
func (f *Fake) Emit(msg gateway.InboundMessage) {
	f.inbound <- msg
}

func (f *Fake) stall(s Sent) {
	f.mu.Lock()
	delay := f.SendDelay
	f.mu.Unlock()
	if delay != nil {
		time.Sleep(delay(s))
	}
}

func (f *Fake) SendChannelMessage(_ context.Context, channelID, text string) error {
	f.stall(Sent{Target: channelID, Text: text})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, Sent{Target: channelID, Text: text})
	return nil
}

func (f *Fake) SendDirectMessage(_ context.Context, userID, text string) error {
	f.stall(Sent{Direct: true, Target: userID, Text: text})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BlockedDMs[userID] {
		return ErrBlocked
	}
	f.sent = append(f.sent, Sent{Direct: true, Target: userID, Text: text})
	return nil
}

func (f *Fake) ResolveGroup(_ context.Context, groupID string) (*gateway.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.Groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, gateway.ErrNotFound)
	}
	return g, nil
}

func (f *Fake) ResolveChannel(_ context.Context, groupID, channelID string) (*gateway.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Channels[channelID]
	if !ok || c.GroupID != groupID {
		return nil, fmt.Errorf("channel %s: %w", channelID, gateway.ErrNotFound)
	}
	return c, nil
}

// ResolveMember accepts "<@id>", "@name" and raw ids.
func (f *Fake) ResolveMember(_ context.Context, groupID, reference string) (*gateway.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.Groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, gateway.ErrNotFound)
	}
	ref := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(reference, "<@"), "@"), ">")
	for _, m := range g.Members {
		if m.ID == ref || m.Name == ref {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("member %s: %w", reference, gateway.ErrNotFound)
}

func (f *Fake) OnReady(fn func(ctx context.Context, self gateway.Identity)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onReady = fn
}

func (f *Fake) OnMessage(fn func(ctx context.Context, msg gateway.InboundMessage)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onMessage = fn
}

func (f *Fake) Self() gateway.Identity {
	return f.Identity
}

func (f *Fake) Latency() time.Duration {
	return f.Lag
}

// Run signals readiness and forwards emitted messages until ctx is cancelled.
func (f *Fake) Run(ctx context.Context) error {
	f.mu.Lock()
	onReady, onMessage := f.onReady, f.onMessage
	f.mu.Unlock()

	if onReady != nil {
		onReady(ctx, f.Identity)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-f.inbound:
			if onMessage != nil {
				onMessage(ctx, msg)
			}
		}
	}
}

var _ gateway.Gateway = (*Fake)(nil)
