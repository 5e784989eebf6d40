package commands

import "log/slog"

// RegisterAllCommands creates a router with every bot command registered.
func RegisterAllCommands(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := NewRouter(deps.Config.CommandPrefix, deps.Logger)

	r.Register(Command{
		Name:        "compliment",
		Description: "Send a random compliment to a user by direct message",
		Args:        []ArgSpec{ArgMember},
		NeedsGroup:  true,
		GroupOnly:   true,
		Handler:     NewComplimentHandler(deps),
	})
	r.Register(Command{
		Name:        "ping",
		Description: "Show the current gateway latency",
		Handler:     newPingHandler(),
	})
	r.Register(Command{
		Name:        "echo",
		Description: "Repeat the given text",
		Args:        []ArgSpec{ArgText},
		Handler:     newEchoHandler(),
	})
	r.Register(Command{
		Name:        "serverinfo",
		Description: "Show member counts for this server",
		NeedsGroup:  true,
		GroupOnly:   true,
		Handler:     newServerInfoHandler(),
	})
	r.Register(Command{
		Name:        "userinfo",
		Description: "Show information about a user or yourself",
		Args:        []ArgSpec{ArgOptionalMember},
		NeedsGroup:  true,
		Handler:     newUserInfoHandler(),
	})
	r.Register(Command{
		Name:        "listmembers",
		Description: "List all members of this server",
		NeedsGroup:  true,
		GroupOnly:   true,
		Handler:     newListMembersHandler(),
	})
	r.Register(Command{
		Name:        "randomuser",
		Description: "Mention a random member of this server",
		NeedsGroup:  true,
		GroupOnly:   true,
		Handler:     newRandomUserHandler(deps),
	})
	r.Register(Command{
		Name:        "avatar",
		Description: "Show the avatar of a user or yourself",
		Args:        []ArgSpec{ArgOptionalMember},
		NeedsGroup:  true,
		Handler:     newAvatarHandler(),
	})
	r.Register(Command{
		Name:        "listchannels",
		Description: "List the text channels of this server",
		NeedsGroup:  true,
		GroupOnly:   true,
		Handler:     newListChannelsHandler(),
	})
	r.Register(Command{
		Name:        "botinfo",
		Description: "Show information about the bot",
		Handler:     newBotInfoHandler(deps),
	})
	r.Register(Command{
		Name:        "version",
		Description: "Show the bot version",
		Handler:     newVersionHandler(deps),
	})
	r.Register(Command{
		Name:        "uptime",
		Description: "Show how long the bot has been running",
		Handler:     newUptimeHandler(deps),
	})
	r.Register(Command{
		Name:        "invite",
		Description: "Show the invite link for the bot",
		Handler:     newInviteHandler(deps),
	})
	r.Register(Command{
		Name:        "github",
		Description: "Show the bot's source repository",
		Handler:     newGitHubHandler(deps),
	})
	r.Register(Command{
		Name:        "help",
		Description: "List the available commands",
		Handler:     newHelpHandler(r),
	})

	deps.Logger.Info("Initialized commands", "count", len(r.order), "prefix", r.prefix)
	return r
}
