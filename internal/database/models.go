package database

import "time"

// Member is one user seen in a group chat.
// A row is keyed by (ChatID, UserID) and refreshed every time the user speaks.
type Member struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ChatID     int64     `db:"chat_id"`
	UserID     int64     `db:"user_id"`
	Username   string    `db:"username"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	IsBot      bool      `db:"is_bot"`
	LastSeenAt time.Time `db:"last_seen_at"`
}

// DisplayName returns the member's full name, falling back to the username.
func (m Member) DisplayName() string {
	name := m.FirstName
	if m.LastName != "" {
		if name != "" {
			name += " "
		}
		name += m.LastName
	}
	if name == "" {
		return m.Username
	}
	return name
}
