package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(ct *testing.T) {
		c, err := LoadConfig()
		require.NoError(ct, err)
		assert.Equal(ct, Config{Backend: BackendFile, LogLevel: slog.LevelInfo}, c)
	})

	t.Run("log level", func(ct *testing.T) {
		ct.Setenv("EVENTHUB_LOG_LEVEL", "debug")

		c, err := LoadConfig()
		require.NoError(ct, err)
		assert.Equal(ct, slog.LevelDebug, c.LogLevel)
	})

	t.Run("unsupported backend (error)", func(ct *testing.T) {
		ct.Setenv("EVENTHUB_BACKEND", "sqlite")

		_, err := LoadConfig()
		assert.Error(ct, err)
	})
}

func TestOpenFromEnv(t *testing.T) {
	t.Setenv("EVENTHUB_STORAGE_ROOT", t.TempDir())
	t.Setenv("EVENTHUB_BUCKET_COUNT", "16")

	c, err := LoadConfig()
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	logger := c.NewLogger(logs)

	repos, err := c.OpenFromEnv()(context.Background(), logger)
	require.NoError(t, err)

	storeOrder(t, repos)
	assert.Contains(t, logs.String(), "final event message stored")
	assert.Contains(t, logs.String(), "event_stream_id="+streamID)

	out, err := execute(repos, "fetch", streamID, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "order-shipped")
}

func TestOpenFromEnvMissingRoot(t *testing.T) {
	t.Setenv("EVENTHUB_STORAGE_ROOT", "")

	c, err := LoadConfig()
	require.NoError(t, err)

	_, err = c.OpenFromEnv()(context.Background(), nil)
	assert.Error(t, err)
}
