package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/critic"
	criticjson "github.com/fwojciec/critic/json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "critic.log")
	logger, closer, err := openLog(path, "debug")
	require.NoError(t, err)
	logger.Debug().Str("path", "a.txt").Msg("file skipped")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"file skipped"`)
	assert.Contains(t, string(data), `"level":"debug"`)
}

func TestOpenLog_LevelFilters(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "critic.log")
	logger, closer, err := openLog(path, "warn")
	require.NoError(t, err)
	logger.Info().Msg("quiet")
	logger.Warn().Msg("loud")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestOpenLog_BadLevel(t *testing.T) {
	t.Parallel()

	_, _, err := openLog(filepath.Join(t.TempDir(), "x.log"), "chatty")
	assert.Error(t, err)
}

func TestNewHandlers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := criticjson.NewStore(filepath.Join(dir, "session.json"))
	h := newHandlers(zerolog.Nop(), store, critic.DefaultSystemPrompt)

	t.Run("turn without key is rejected before any call", func(t *testing.T) {
		t.Parallel()

		var s critic.Session
		settings := critic.DefaultSettings()
		err := h.Turn(context.Background(), &s, settings, "hello", func(critic.Event) {})
		assert.ErrorIs(t, err, critic.ErrMissingCredential)
		require.Len(t, s.Messages, 1)
		assert.Equal(t, critic.UserMessage("hello"), s.Messages[0])
	})

	t.Run("extraction without key is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := h.ExtractStyle(context.Background(), critic.DefaultSettings())
		assert.ErrorIs(t, err, critic.ErrMissingCredential)
	})

	t.Run("save and export write files", func(t *testing.T) {
		t.Parallel()

		s := critic.Session{Messages: []critic.Message{critic.UserMessage("a")}, StyleGuide: "g"}
		require.NoError(t, h.Save(s))
		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, s.Messages, loaded.Messages)

		out := filepath.Join(dir, "export.json")
		require.NoError(t, h.Export(out, s))
		_, err = os.Stat(out)
		assert.NoError(t, err)
	})
}
