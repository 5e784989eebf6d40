package discord

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"

	"github.com/edgard/complimentbot/internal/gateway"
)

// Discord rejects messages longer than this.
const maxMessageLen = 2000

// toMember converts a guild member. status is the member's presence, if known.
func toMember(m *discordgo.Member, status discordgo.Status) gateway.Member {
	if m == nil || m.User == nil {
		return gateway.Member{}
	}
	member := userToMember(m.User)
	member.JoinedAt = m.JoinedAt
	if m.Nick != "" {
		member.DisplayName = m.Nick
	}
	if status != "" {
		member.Status = string(status)
	}
	return member
}

func userToMember(u *discordgo.User) gateway.Member {
	display := u.GlobalName
	if display == "" {
		display = u.Username
	}
	return gateway.Member{
		ID:          u.ID,
		Name:        u.Username,
		DisplayName: display,
		Mention:     u.Mention(),
		AvatarURL:   u.AvatarURL(""),
		Bot:         u.Bot,
	}
}

func toChannel(c *discordgo.Channel) gateway.Channel {
	return gateway.Channel{
		ID:      c.ID,
		GroupID: c.GuildID,
		Name:    c.Name,
		Text:    c.Type == discordgo.ChannelTypeGuildText || c.Type == discordgo.ChannelTypeGuildNews,
	}
}

// toInbound converts a message event. The author is enriched with the guild
// member data Discord attaches to guild messages.
func toInbound(m *discordgo.MessageCreate, selfID string) gateway.InboundMessage {
	if m == nil || m.Message == nil || m.Author == nil {
		return gateway.InboundMessage{}
	}

	author := userToMember(m.Author)
	if m.Member != nil {
		member := *m.Member
		member.User = m.Author
		author = toMember(&member, "")
	}

	return gateway.InboundMessage{
		ID:         m.ID,
		AuthorID:   m.Author.ID,
		Author:     author,
		Text:       m.Content,
		ChannelID:  m.ChannelID,
		GroupID:    m.GuildID,
		IsFromSelf: m.Author.ID == selfID,
	}
}

// onlineCount counts presences whose status is online. Idle and do-not-disturb
// members are not counted.
func onlineCount(presences []*discordgo.Presence) int {
	n := 0
	for _, p := range presences {
		if p != nil && p.Status == discordgo.StatusOnline {
			n++
		}
	}
	return n
}

// membersComplete reports whether guild.Members lists every member. A guild
// whose total is unknown is trusted when it lists anyone at all.
func membersComplete(guild *discordgo.Guild) bool {
	if guild == nil || len(guild.Members) == 0 {
		return false
	}
	return guild.MemberCount == 0 || len(guild.Members) >= guild.MemberCount
}

func inviteURL(applicationID string, permissions int64) string {
	if applicationID == "" {
		return ""
	}
	return fmt.Sprintf("https://discord.com/oauth2/authorize?client_id=%s&permissions=%d&scope=bot", applicationID, permissions)
}

// snowflake extracts the id from "<@id>", "<@!id>" or a bare id. It reports
// false for anything else.
func snowflake(ref string) (string, bool) {
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(ref, "<@"), "!"), ">")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if !unicode.IsDigit(r) {
			return "", false
		}
	}
	return id, true
}

// matchesName compares a typed name against every name a user goes by.
func matchesName(m *discordgo.Member, name string) bool {
	if m == nil || m.User == nil {
		return false
	}
	name = strings.TrimPrefix(name, "@")
	for _, candidate := range []string{m.User.Username, m.User.GlobalName, m.Nick} {
		if candidate != "" && strings.EqualFold(candidate, name) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, discordgo.ErrStateNotFound)
}
