package commands

import (
	"strings"
	"unicode"

	"github.com/edgard/complimentbot/internal/gateway"
)

// ArgumentKind tags the variant held by an Argument.
type ArgumentKind int

const (
	// MemberArgument holds a resolved member.
	MemberArgument ArgumentKind = iota + 1
	// ReferenceArgument holds a user reference that still has to be resolved.
	ReferenceArgument
	// TextArgument holds free text.
	TextArgument
)

// Argument is one parsed command argument.
type Argument struct {
	Kind      ArgumentKind
	Member    *gateway.Member
	Reference string
	Text      string
}

// Invocation is a single command call parsed from a message.
// Arguments is filled by the router; handlers only ever see resolved members.
type Invocation struct {
	Name         string
	RawArguments string
	Arguments    []Argument
}

// Member returns the member held by argument i, or the zero member.
func (inv Invocation) Member(i int) gateway.Member {
	if i < 0 || i >= len(inv.Arguments) || inv.Arguments[i].Member == nil {
		return gateway.Member{}
	}
	return *inv.Arguments[i].Member
}

// Text returns the free text held by argument i.
func (inv Invocation) Text(i int) string {
	if i < 0 || i >= len(inv.Arguments) {
		return ""
	}
	return inv.Arguments[i].Text
}

// Parse splits a prefixed message into a command name and its raw arguments.
// It reports false when text does not start with prefix or names nothing.
func Parse(text, prefix string) (Invocation, bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return Invocation{}, false
	}

	body := strings.TrimPrefix(text, prefix)
	if body == "" || unicode.IsSpace(rune(body[0])) {
		return Invocation{}, false
	}

	name, rest := cutToken(body)
	return Invocation{Name: name, RawArguments: rest}, true
}

// cutToken returns the first whitespace-delimited token of s and the trimmed remainder.
func cutToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

// referenceID extracts the id from "<@id>", "<@!id>" or a bare id.
func referenceID(ref string) string {
	ref = strings.TrimPrefix(ref, "<@")
	ref = strings.TrimPrefix(ref, "!")
	return strings.TrimSuffix(ref, ">")
}

// findMember looks ref up in a group snapshot by id, mention form or name.
func findMember(members []gateway.Member, ref string) (gateway.Member, bool) {
	id := referenceID(ref)
	name := strings.TrimPrefix(ref, "@")
	for _, m := range members {
		if m.ID == id || (m.Mention != "" && m.Mention == ref) || strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return gateway.Member{}, false
}
