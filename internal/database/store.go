package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the member roster.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertMember records member as seen now. CreatedAt is preserved on update.
	UpsertMember(ctx context.Context, member *Member) error

	// GetMember returns the member, or nil, nil if it was never seen.
	GetMember(ctx context.Context, chatID, userID int64) (*Member, error)

	// FindMemberByUsername matches username case-insensitively, with or without "@".
	// It returns nil, nil when nobody matches.
	FindMemberByUsername(ctx context.Context, chatID int64, username string) (*Member, error)

	// ListMembers returns every member seen in chatID ordered by first sighting.
	ListMembers(ctx context.Context, chatID int64) ([]Member, error)

	// RunSQLMaintenance vacuums and analyzes the database.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore returns a Store backed by db.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UpsertMember(ctx context.Context, member *Member) error {
	if member == nil {
		return errors.New("cannot upsert nil member")
	}
	if member.ChatID == 0 || member.UserID == 0 {
		return fmt.Errorf("member must have non-zero chat_id and user_id (got %d, %d)", member.ChatID, member.UserID)
	}

	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	if member.LastSeenAt.IsZero() {
		member.LastSeenAt = now
	}

	query := `
        INSERT INTO members (chat_id, user_id, username, first_name, last_name, is_bot, last_seen_at, created_at, updated_at)
        VALUES (:chat_id, :user_id, :username, :first_name, :last_name, :is_bot, :last_seen_at, :created_at, :updated_at)
        ON CONFLICT (chat_id, user_id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            is_bot = excluded.is_bot,
            last_seen_at = excluded.last_seen_at,
            updated_at = excluded.updated_at;
    `
	if _, err := s.db.NamedExecContext(ctx, query, member); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting member", "chat_id", member.ChatID, "user_id", member.UserID, "error", err)
		return fmt.Errorf("failed to upsert member (chat %d, user %d): %w", member.ChatID, member.UserID, err)
	}
	return nil
}

func (s *sqlxStore) GetMember(ctx context.Context, chatID, userID int64) (*Member, error) {
	var member Member
	query := `SELECT * FROM members WHERE chat_id = ? AND user_id = ?;`
	if err := s.db.GetContext(ctx, &member, query, chatID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member (chat %d, user %d): %w", chatID, userID, err)
	}
	return &member, nil
}

func (s *sqlxStore) FindMemberByUsername(ctx context.Context, chatID int64, username string) (*Member, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, nil
	}

	var member Member
	query := `SELECT * FROM members WHERE chat_id = ? AND username = ? COLLATE NOCASE LIMIT 1;`
	if err := s.db.GetContext(ctx, &member, query, chatID, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find member %q in chat %d: %w", username, chatID, err)
	}
	return &member, nil
}

func (s *sqlxStore) ListMembers(ctx context.Context, chatID int64) ([]Member, error) {
	members := []Member{}
	query := `SELECT * FROM members WHERE chat_id = ? ORDER BY id ASC;`
	if err := s.db.SelectContext(ctx, &members, query, chatID); err != nil {
		return nil, fmt.Errorf("failed to list members of chat %d: %w", chatID, err)
	}
	return members, nil
}

// RunSQLMaintenance runs VACUUM then ANALYZE. VACUUM cannot run inside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")
	for _, stmt := range []string{"VACUUM;", "ANALYZE;"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "Database maintenance cancelled", "statement", stmt, "error", err)
			}
			return fmt.Errorf("database maintenance (%s) failed: %w", strings.TrimSuffix(stmt, ";"), err)
		}
	}
	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}
