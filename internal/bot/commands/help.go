package commands

import (
	"context"
	"strings"

	"github.com/edgard/complimentbot/internal/action"
)

// newHelpHandler lists every command registered on r at the time of the call.
func newHelpHandler(r *Router) HandlerFunc {
	return func(context.Context, Request) (action.Action, error) {
		var b strings.Builder
		b.WriteString("Available commands:")
		for _, cmd := range r.Commands() {
			b.WriteString("\n")
			b.WriteString(cmd.Usage(r.prefix))
			b.WriteString(" - ")
			b.WriteString(cmd.Description)
		}
		return action.SendChannelMessage(b.String()), nil
	}
}
