package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgard/complimentbot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "roster.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db, nil) })

	return database.NewStore(db, nil)
}

func TestStore_UpsertAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Ping(ctx))

	seen := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, store.UpsertMember(ctx, &database.Member{
		ChatID: -100, UserID: 7, Username: "alice", FirstName: "Alice", LastSeenAt: seen,
	}))

	got, err := store.GetMember(ctx, -100, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "Alice", got.DisplayName())
	require.True(t, seen.Equal(got.LastSeenAt))
	require.False(t, got.IsBot)

	missing, err := store.GetMember(ctx, -100, 8)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestStore_UpsertUpdatesExistingRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.UpsertMember(ctx, &database.Member{ChatID: 1, UserID: 2, Username: "old"}))
	first, err := store.GetMember(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, store.UpsertMember(ctx, &database.Member{ChatID: 1, UserID: 2, Username: "new", IsBot: true}))
	second, err := store.GetMember(ctx, 1, 2)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "new", second.Username)
	require.True(t, second.IsBot)
	require.True(t, first.CreatedAt.Equal(second.CreatedAt))

	members, err := store.ListMembers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestStore_UpsertRejectsInvalidMember(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.Error(t, store.UpsertMember(ctx, nil))
	require.Error(t, store.UpsertMember(ctx, &database.Member{ChatID: 1}))
	require.Error(t, store.UpsertMember(ctx, &database.Member{UserID: 1}))
}

func TestStore_FindMemberByUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.UpsertMember(ctx, &database.Member{ChatID: 1, UserID: 2, Username: "Alice"}))
	require.NoError(t, store.UpsertMember(ctx, &database.Member{ChatID: 9, UserID: 3, Username: "bob"}))

	testCases := []struct {
		name     string
		chatID   int64
		username string
		wantID   int64
	}{
		{name: "exact", chatID: 1, username: "Alice", wantID: 2},
		{name: "case insensitive", chatID: 1, username: "alice", wantID: 2},
		{name: "with at sign", chatID: 1, username: "@ALICE", wantID: 2},
		{name: "other chat", chatID: 1, username: "bob"},
		{name: "empty", chatID: 1, username: "@"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.FindMemberByUsername(ctx, tc.chatID, tc.username)
			require.NoError(t, err)
			if tc.wantID == 0 {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, tc.wantID, got.UserID)
		})
	}
}

func TestStore_ListMembers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	empty, err := store.ListMembers(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, empty)

	for _, id := range []int64{30, 10, 20} {
		require.NoError(t, store.UpsertMember(ctx, &database.Member{ChatID: 1, UserID: id}))
	}
	require.NoError(t, store.UpsertMember(ctx, &database.Member{ChatID: 2, UserID: 99}))

	members, err := store.ListMembers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, members, 3)
	require.Equal(t, []int64{30, 10, 20}, []int64{members[0].UserID, members[1].UserID, members[2].UserID})
}

func TestStore_RunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.RunSQLMaintenance(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.RunSQLMaintenance(ctx), context.Canceled)
}

func TestNewDB_ReopenKeepsRoster(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roster.db")

	first, err := database.NewDB(path, nil)
	require.NoError(t, err)
	require.NoError(t, database.NewStore(first, nil).UpsertMember(ctx, &database.Member{
		ChatID: -100, UserID: 7, Username: "ann", FirstName: "Ann",
	}))
	database.CloseDB(first, nil)

	second, err := database.NewDB("file:"+path+"?_pragma=busy_timeout(1000)", nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(second, nil) })

	got, err := database.NewStore(second, nil).GetMember(ctx, -100, 7)
	require.NoError(t, err)
	require.Equal(t, "ann", got.Username)
}

func TestCloseDB_Nil(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() { database.CloseDB(nil, nil) })
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "storage.db", database.ExtractDBNameFromPath("storage.db"))
	require.Equal(t, "/tmp/my db.sqlite", database.ExtractDBNameFromPath("file:/tmp/my%20db.sqlite?_pragma=busy_timeout(5000)"))
}

func TestMemberDisplayName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Ada Lovelace", database.Member{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}.DisplayName())
	require.Equal(t, "Lovelace", database.Member{LastName: "Lovelace"}.DisplayName())
	require.Equal(t, "ada", database.Member{Username: "ada"}.DisplayName())
}
