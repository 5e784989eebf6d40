// Package gateway defines the boundary between the bot and a chat platform.
// Adapters for concrete platforms live in sub-packages and translate their
// native events and objects into the value types declared here.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a group, channel or member cannot be resolved.
var ErrNotFound = errors.New("not found")

// Member is a participant of a group as reported by the platform.
type Member struct {
	ID          string
	Name        string
	DisplayName string
	Mention     string
	Status      string
	JoinedAt    time.Time
	AvatarURL   string
	Bot         bool
}

// Channel is a named stream inside a group.
type Channel struct {
	ID      string
	GroupID string
	Name    string
	Text    bool
}

// Group is a point-in-time snapshot of a group, its members and channels.
type Group struct {
	ID          string
	Name        string
	Members     []Member
	Channels    []Channel
	MemberCount int
	OnlineCount int
}

// Identity describes the bot account itself.
type Identity struct {
	ID        string
	Name      string
	InviteURL string
}

// InboundMessage is a single text message delivered by the platform.
// GroupID is empty for direct messages.
type InboundMessage struct {
	ID         string
	AuthorID   string
	Author     Member
	Text       string
	ChannelID  string
	GroupID    string
	IsFromSelf bool
}

// Sender delivers outbound messages.
type Sender interface {
	SendChannelMessage(ctx context.Context, channelID, text string) error
	SendDirectMessage(ctx context.Context, userID, text string) error
}

// Resolver looks up platform objects by identifier.
type Resolver interface {
	ResolveGroup(ctx context.Context, groupID string) (*Group, error)
	ResolveChannel(ctx context.Context, groupID, channelID string) (*Channel, error)
	// ResolveMember resolves a user reference as typed by a user (a mention,
	// an @username or a raw id) to a member of the given group.
	ResolveMember(ctx context.Context, groupID, reference string) (*Member, error)
}

// Gateway is a connected chat platform.
type Gateway interface {
	Sender
	Resolver

	OnReady(fn func(ctx context.Context, self Identity))
	OnMessage(fn func(ctx context.Context, msg InboundMessage))

	Self() Identity
	Latency() time.Duration

	// Run connects and blocks until ctx is cancelled or the connection fails.
	Run(ctx context.Context) error
}

// DeliveryError reports a failed outbound send.
type DeliveryError struct {
	Target string
	Direct bool
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Direct {
		return fmt.Sprintf("direct message to %s not delivered: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("message to channel %s not delivered: %v", e.Target, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
