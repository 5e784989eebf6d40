package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/complimentbot/internal/database"
	"github.com/edgard/complimentbot/internal/gateway"
)

// Telegram rejects messages longer than this.
const maxMessageLen = 4096

func isGroupChat(chatType string) bool {
	return chatType == string(models.ChatTypeGroup) || chatType == string(models.ChatTypeSupergroup)
}

func parseChatID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chat id %q: %w", id, gateway.ErrNotFound)
	}
	return n, nil
}

func toRosterMember(chatID int64, u models.User) *database.Member {
	return &database.Member{
		ChatID:    chatID,
		UserID:    u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
	}
}

// fromRoster converts a roster row. Users without a username are mentioned by name.
func fromRoster(m database.Member) gateway.Member {
	display := m.DisplayName()
	member := gateway.Member{
		ID:          strconv.FormatInt(m.UserID, 10),
		Name:        display,
		DisplayName: display,
		Mention:     display,
		Bot:         m.IsBot,
	}
	if m.Username != "" {
		member.Name = m.Username
		member.Mention = "@" + m.Username
	}
	return member
}

func toInbound(msg *models.Message, selfID int64) gateway.InboundMessage {
	if msg == nil || msg.From == nil {
		return gateway.InboundMessage{}
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	in := gateway.InboundMessage{
		ID:         strconv.Itoa(msg.ID),
		AuthorID:   strconv.FormatInt(msg.From.ID, 10),
		Author:     fromRoster(*toRosterMember(msg.Chat.ID, *msg.From)),
		Text:       msg.Text,
		ChannelID:  chatID,
		IsFromSelf: msg.From.ID == selfID,
	}
	if isGroupChat(string(msg.Chat.Type)) {
		in.GroupID = chatID
	}
	return in
}

func inviteURL(username string) string {
	if username == "" {
		return ""
	}
	return "https://t.me/" + username + "?startgroup=true"
}
