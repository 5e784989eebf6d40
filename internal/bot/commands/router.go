// Package commands routes prefixed chat commands to their handlers.
// Handlers are pure: they turn a request into an action and never talk to the gateway.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edgard/complimentbot/internal/action"
	"github.com/edgard/complimentbot/internal/gateway"
)

// ArgSpec declares one expected argument.
type ArgSpec int

const (
	// ArgMember is a required user reference.
	ArgMember ArgSpec = iota + 1
	// ArgOptionalMember is a user reference that defaults to the invoker.
	ArgOptionalMember
	// ArgText is the required rest of the line.
	ArgText
)

// Command is a registered command.
type Command struct {
	Name        string
	Description string
	Args        []ArgSpec
	// NeedsGroup asks the caller to supply a group snapshot.
	NeedsGroup bool
	// GroupOnly rejects the command with ErrGroupOnly before its arguments are
	// resolved when there is no group snapshot.
	GroupOnly bool
	Handler    HandlerFunc
}

// Usage renders the command's call syntax for prefix.
func (c Command) Usage(prefix string) string {
	parts := []string{prefix + c.Name}
	for _, a := range c.Args {
		switch a {
		case ArgMember:
			parts = append(parts, "<user>")
		case ArgOptionalMember:
			parts = append(parts, "[user]")
		case ArgText:
			parts = append(parts, "<text>")
		}
	}
	return strings.Join(parts, " ")
}

// Router holds registered commands. Registration happens before dispatching starts;
// after that the router is read-only and safe for concurrent Dispatch calls.
type Router struct {
	prefix   string
	logger   *slog.Logger
	commands map[string]Command
	order    []string
}

// NewRouter creates an empty router for commands starting with prefix.
func NewRouter(prefix string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		prefix:   prefix,
		logger:   logger.With("component", "command_router"),
		commands: make(map[string]Command),
	}
}

// Prefix returns the command prefix.
func (r *Router) Prefix() string {
	return r.prefix
}

// Register associates cmd.Name with cmd. Registering a name twice replaces the handler.
func (r *Router) Register(cmd Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	r.logger.Debug("Registered command", "command", cmd.Name)
}

// Lookup returns the command registered under name.
func (r *Router) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns the registered commands in registration order.
func (r *Router) Commands() []Command {
	cmds := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// Dispatch resolves the invocation's arguments and runs the matching handler.
// It fails with ErrUnknownCommand for unregistered names, ErrGroupOnly for group
// commands used outside a group and *ArgumentError when arguments are missing or
// a referenced user cannot be resolved.
func (r *Router) Dispatch(ctx context.Context, inv Invocation, env Env) (action.Action, error) {
	cmd, ok := r.commands[inv.Name]
	if !ok {
		return action.Action{}, fmt.Errorf("%w: %q", ErrUnknownCommand, inv.Name)
	}
	if cmd.GroupOnly && env.Group == nil {
		return action.Action{}, fmt.Errorf("%s: %w", cmd.Name, ErrGroupOnly)
	}

	args, err := r.parseArguments(cmd, inv.RawArguments, env)
	if err != nil {
		return action.Action{}, err
	}
	if err := r.resolveArguments(ctx, cmd, args, env); err != nil {
		return action.Action{}, err
	}
	inv.Arguments = args

	return cmd.Handler(ctx, Request{Env: env, Invocation: inv})
}

func (r *Router) parseArguments(cmd Command, raw string, env Env) ([]Argument, error) {
	args := make([]Argument, 0, len(cmd.Args))
	rest := strings.TrimSpace(raw)

	for _, spec := range cmd.Args {
		switch spec {
		case ArgText:
			if rest == "" {
				return nil, r.argumentError(cmd, "missing text")
			}
			args = append(args, Argument{Kind: TextArgument, Text: rest})
			rest = ""
		case ArgMember, ArgOptionalMember:
			var token string
			token, rest = cutToken(rest)
			switch {
			case token != "":
				args = append(args, Argument{Kind: ReferenceArgument, Reference: token})
			case spec == ArgOptionalMember:
				author := invoker(env)
				args = append(args, Argument{Kind: MemberArgument, Member: &author})
			default:
				return nil, r.argumentError(cmd, "missing user")
			}
		}
	}
	return args, nil
}

func (r *Router) resolveArguments(ctx context.Context, cmd Command, args []Argument, env Env) error {
	for i := range args {
		if args[i].Kind != ReferenceArgument {
			continue
		}
		member, err := r.resolveReference(ctx, args[i].Reference, env)
		if err != nil {
			r.logger.DebugContext(ctx, "Failed to resolve user reference",
				"command", cmd.Name, "reference", args[i].Reference, "error", err)
			return r.argumentError(cmd, fmt.Sprintf("unknown user %s", args[i].Reference))
		}
		args[i] = Argument{Kind: MemberArgument, Member: member, Reference: args[i].Reference}
	}
	return nil
}

func (r *Router) resolveReference(ctx context.Context, ref string, env Env) (*gateway.Member, error) {
	if env.Group != nil {
		if m, ok := findMember(env.Group.Members, ref); ok {
			return &m, nil
		}
	}
	if env.Resolver == nil {
		return nil, gateway.ErrNotFound
	}

	groupID := env.GroupID
	if env.Group != nil {
		groupID = env.Group.ID
	}
	member, err := env.Resolver.ResolveMember(ctx, groupID, ref)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, gateway.ErrNotFound
	}
	return member, nil
}

func (r *Router) argumentError(cmd Command, reason string) error {
	return &ArgumentError{Command: cmd.Name, Usage: cmd.Usage(r.prefix), Reason: reason}
}

// invoker returns the author, enriched from the group snapshot when possible.
func invoker(env Env) gateway.Member {
	if env.Group != nil {
		for _, m := range env.Group.Members {
			if m.ID == env.Author.ID {
				return m
			}
		}
	}
	return env.Author
}

// IsUserError reports whether err should be explained to the invoking user
// rather than treated as an internal failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrArgument) || errors.Is(err, ErrGroupOnly)
}
