package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgard/complimentbot/internal/action"
	"github.com/edgard/complimentbot/internal/bot/commands"
	"github.com/edgard/complimentbot/internal/config"
	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/gateway/gatewaytest"
	"github.com/edgard/complimentbot/internal/selector"
)

var (
	startTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	alice = gateway.Member{
		ID: "1", Name: "alice", Mention: "<@1>", Status: "online",
		JoinedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), AvatarURL: "https://cdn.example.com/alice.png",
	}
	bob = gateway.Member{ID: "2", Name: "bob", Mention: "<@2>", Status: "offline"}
)

func testGroup() *gateway.Group {
	return &gateway.Group{
		ID:          "g",
		Name:        "Test Server",
		Members:     []gateway.Member{alice, bob},
		MemberCount: 2,
		OnlineCount: 1,
		Channels: []gateway.Channel{
			{ID: "c1", GroupID: "g", Name: "general", Text: true},
			{ID: "c2", GroupID: "g", Name: "Voice Lounge"},
			{ID: "c3", GroupID: "g", Name: "random", Text: true},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		CommandPrefix: "!",
		Compliments:   []string{"You are brilliant", "You make everything better"},
		Metadata: config.BotMetadata{
			Version: "1.0.0",
			RepoURL: "https://github.com/edgard/complimentbot",
		},
	}
}

func newRouter(t *testing.T, cfg *config.Config) *commands.Router {
	t.Helper()
	return commands.RegisterAllCommands(commands.Deps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   cfg,
		Selector: selector.NewWithSource(func(int) int { return 0 }),
		Process:  commands.ProcessContext{StartTime: startTime},
	})
}

func testEnv() commands.Env {
	return commands.Env{
		ChannelID: "c1",
		GroupID:   "g",
		Author:    gateway.Member{ID: "1", Name: "alice"},
		Group:     testGroup(),
		Self:      gateway.Identity{ID: "99", Name: "complimentbot", InviteURL: "https://invite.example.com"},
		Latency:   42 * time.Millisecond,
		Now:       startTime.Add(90*time.Second + 500*time.Millisecond),
	}
}

func dispatch(t *testing.T, r *commands.Router, text string, env commands.Env) (action.Action, error) {
	t.Helper()
	inv, ok := commands.Parse(text, r.Prefix())
	require.True(t, ok, "text %q should parse as a command", text)
	return r.Dispatch(context.Background(), inv, env)
}

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		prefix   string
		wantOK   bool
		wantName string
		wantArgs string
	}{
		{name: "bare command", text: "!ping", prefix: "!", wantOK: true, wantName: "ping"},
		{name: "with arguments", text: "!echo  hello   world ", prefix: "!", wantOK: true, wantName: "echo", wantArgs: "hello   world"},
		{name: "multi-char prefix", text: "cb>uptime", prefix: "cb>", wantOK: true, wantName: "uptime"},
		{name: "no prefix", text: "ping", prefix: "!", wantOK: false},
		{name: "prefix only", text: "!", prefix: "!", wantOK: false},
		{name: "space after prefix", text: "! ping", prefix: "!", wantOK: false},
		{name: "prefix later in text", text: "hey !ping", prefix: "!", wantOK: false},
		{name: "empty prefix", text: "ping", prefix: "", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			inv, ok := commands.Parse(tc.text, tc.prefix)
			require.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				return
			}
			require.Equal(t, tc.wantName, inv.Name)
			require.Equal(t, tc.wantArgs, inv.RawArguments)
		})
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	_, err := dispatch(t, r, "!dance", testEnv())
	require.ErrorIs(t, err, commands.ErrUnknownCommand)
}

func TestDispatch_CommandNamesAreCaseSensitive(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	_, err := dispatch(t, r, "!PING", testEnv())
	require.ErrorIs(t, err, commands.ErrUnknownCommand)
}

func TestDispatch_Echo(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	got, err := dispatch(t, r, "!echo hi", testEnv())
	require.NoError(t, err)
	require.Equal(t, action.SendChannelMessage("hi"), got)
}

func TestDispatch_EchoWithoutText(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	_, err := dispatch(t, r, "!echo", testEnv())

	var argErr *commands.ArgumentError
	require.True(t, errors.As(err, &argErr))
	require.Equal(t, "!echo <text>", argErr.Usage)
	require.ErrorIs(t, err, commands.ErrArgument)
	require.True(t, commands.IsUserError(err))
}

func TestDispatch_Compliment(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	r := newRouter(t, cfg)

	got, err := dispatch(t, r, "!compliment <@2>", testEnv())
	require.NoError(t, err)

	require.Len(t, got.Sends, 2)
	require.True(t, got.ReportFailures)

	dm := got.Sends[0]
	require.Equal(t, action.DirectMessage, dm.Kind)
	require.Equal(t, "2", dm.Recipient.ID)
	require.Contains(t, cfg.Compliments, dm.Text)

	ack := got.Sends[1]
	require.Equal(t, action.ChannelMessage, ack.Kind)
	require.Equal(t, "Compliment sent to bob", ack.Text)
}

func TestDispatch_ComplimentReferenceForms(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	for _, ref := range []string{"<@2>", "<@!2>", "2", "@bob", "bob", "BOB"} {
		got, err := dispatch(t, r, "!compliment "+ref, testEnv())
		require.NoError(t, err, "reference %q", ref)
		require.Equal(t, "2", got.Sends[0].Recipient.ID, "reference %q", ref)
	}
}

func TestDispatch_ComplimentUnknownUser(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	_, err := dispatch(t, r, "!compliment <@404>", testEnv())

	var argErr *commands.ArgumentError
	require.True(t, errors.As(err, &argErr))
	require.Equal(t, "compliment", argErr.Command)
	require.Equal(t, "!compliment <user>", argErr.Usage)
}

func TestDispatch_ComplimentMissingUser(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	_, err := dispatch(t, r, "!compliment", testEnv())
	require.ErrorIs(t, err, commands.ErrArgument)
}

func TestDispatch_ComplimentResolvesThroughGateway(t *testing.T) {
	t.Parallel()

	fake := gatewaytest.NewFake()
	carol := gateway.Member{ID: "3", Name: "carol", Mention: "<@3>"}
	fake.SetGroup("g", &gateway.Group{ID: "g", Members: []gateway.Member{carol}})

	env := testEnv()
	env.Resolver = fake

	r := newRouter(t, testConfig())
	got, err := dispatch(t, r, "!compliment <@3>", env)
	require.NoError(t, err)
	require.Equal(t, "3", got.Sends[0].Recipient.ID)
	require.Equal(t, "Compliment sent to carol", got.Sends[1].Text)
}

func TestDispatch_ComplimentEmptyPool(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Compliments = nil
	r := newRouter(t, cfg)

	_, err := dispatch(t, r, "!compliment <@2>", testEnv())
	require.ErrorIs(t, err, selector.ErrEmptyPool)
}

func TestDispatch_Replies(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "ping", text: "!ping", expected: "Pong! Latency: 42.00ms"},
		{name: "serverinfo", text: "!serverinfo", expected: "Server: Test Server\nTotal Members: 2\nOnline Members: 1"},
		{
			name:     "userinfo defaults to author",
			text:     "!userinfo",
			expected: "User: alice\nID: 1\nStatus: online\nJoined Server: 2024-05-06 07:08:09 UTC",
		},
		{
			name:     "userinfo for mentioned user",
			text:     "!userinfo <@2>",
			expected: "User: bob\nID: 2\nStatus: offline\nJoined Server: Unknown",
		},
		{name: "listmembers", text: "!listmembers", expected: "Members in this server:\nalice\nbob"},
		{name: "randomuser", text: "!randomuser", expected: "Random user: <@1>"},
		{name: "avatar defaults to author", text: "!avatar", expected: "Avatar of alice: https://cdn.example.com/alice.png"},
		{name: "avatar without image", text: "!avatar bob", expected: "Avatar of bob: no avatar set"},
		{name: "listchannels skips non-text", text: "!listchannels", expected: "Text channels in this server:\ngeneral\nrandom"},
		{name: "botinfo", text: "!botinfo", expected: "Bot Name: complimentbot\nID: 99\nPrefix: !"},
		{name: "version", text: "!version", expected: "Bot Version: 1.0.0"},
		{name: "uptime", text: "!uptime", expected: "Uptime: 90.50 seconds"},
		{name: "invite from gateway", text: "!invite", expected: "Invite link: https://invite.example.com"},
		{name: "github", text: "!github", expected: "GitHub Repository: https://github.com/edgard/complimentbot"},
	}

	r := newRouter(t, testConfig())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := dispatch(t, r, tc.text, testEnv())
			require.NoError(t, err)
			require.Equal(t, action.SendChannelMessage(tc.expected), got)
		})
	}
}

func TestDispatch_MetadataFallbacks(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Metadata = config.BotMetadata{InviteURL: "https://configured.example.com"}
	r := newRouter(t, cfg)

	env := testEnv()
	for text, expected := range map[string]string{
		"!version": "Bot Version: Unknown",
		"!github":  "GitHub Repository: Unknown",
		"!invite":  "Invite link: https://configured.example.com",
	} {
		got, err := dispatch(t, r, text, env)
		require.NoError(t, err)
		require.Equal(t, action.SendChannelMessage(expected), got)
	}
}

func TestDispatch_GroupOnlyCommandsOutsideGroup(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	env := testEnv()
	env.Group = nil
	env.GroupID = ""

	for _, text := range []string{"!serverinfo", "!listmembers", "!randomuser", "!listchannels", "!compliment <@2>", "!compliment"} {
		_, err := dispatch(t, r, text, env)
		require.ErrorIs(t, err, commands.ErrGroupOnly, text)
	}
}

func TestDispatch_RandomUserEmptyGroup(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	env := testEnv()
	env.Group = &gateway.Group{ID: "g", Name: "Empty"}

	_, err := dispatch(t, r, "!randomuser", env)
	require.ErrorIs(t, err, selector.ErrEmptyPool)
}

func TestDispatch_Help(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	got, err := dispatch(t, r, "!help", testEnv())
	require.NoError(t, err)
	require.Len(t, got.Sends, 1)

	text := got.Sends[0].Text
	require.True(t, strings.HasPrefix(text, "Available commands:"))
	for _, cmd := range r.Commands() {
		require.Contains(t, text, cmd.Usage("!")+" - "+cmd.Description)
	}
}

func TestRouter_Commands(t *testing.T) {
	t.Parallel()

	r := newRouter(t, testConfig())
	names := make([]string, 0, len(r.Commands()))
	for _, cmd := range r.Commands() {
		names = append(names, cmd.Name)
	}
	require.Equal(t, []string{
		"compliment", "ping", "echo", "serverinfo", "userinfo", "listmembers", "randomuser",
		"avatar", "listchannels", "botinfo", "version", "uptime", "invite", "github", "help",
	}, names)

	cmd, ok := r.Lookup("userinfo")
	require.True(t, ok)
	require.Equal(t, "!userinfo [user]", cmd.Usage(r.Prefix()))
	require.True(t, cmd.NeedsGroup)
}

func TestRouter_RegisterReplaces(t *testing.T) {
	t.Parallel()

	r := commands.NewRouter("!", nil)
	r.Register(commands.Command{Name: "x", Handler: func(context.Context, commands.Request) (action.Action, error) {
		return action.SendChannelMessage("first"), nil
	}})
	r.Register(commands.Command{Name: "x", Handler: func(context.Context, commands.Request) (action.Action, error) {
		return action.SendChannelMessage("second"), nil
	}})

	require.Len(t, r.Commands(), 1)
	got, err := r.Dispatch(context.Background(), commands.Invocation{Name: "x"}, commands.Env{})
	require.NoError(t, err)
	require.Equal(t, action.SendChannelMessage("second"), got)
}
