package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short", input: "hello", maxLen: 10, want: "hello"},
		{name: "exact", input: "hello", maxLen: 5, want: "hello"},
		{name: "long", input: "hello world", maxLen: 8, want: "hello..."},
		{name: "tiny limit", input: "hello", maxLen: 2, want: "..."},
		{name: "multibyte", input: "héllo wörld", maxLen: 6, want: "hél..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, truncateString(tc.input, tc.maxLen))
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("info"))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "warn", true)
	log.Info("hidden")
	log.Warn("shown", "component", "test")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["msg"])
	require.Equal(t, "test", entry["component"])
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "debug", false)

	called := false
	handler := Middleware(log)(func(context.Context, *bot.Bot, *models.Update) { called = true })
	handler(context.Background(), nil, &models.Update{
		ID: 42,
		Message: &models.Message{
			ID:   7,
			Chat: models.Chat{ID: -100, Type: models.ChatTypeSupergroup},
			From: &models.User{ID: 5},
			Text: "!ping",
		},
	})

	require.True(t, called)
	require.Contains(t, buf.String(), "update_id=42")
	require.Contains(t, buf.String(), "user_id=5")
	require.Contains(t, buf.String(), "Finished processing update")
}
