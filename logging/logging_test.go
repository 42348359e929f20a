package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberFlowTech/zapry-convpolicy-go/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNewHandler_RespectsLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := slog.New(NewHandler(cfg, &buf))
	logger.Info("hidden line")
	logger.Warn("visible line", "component", "engine")

	out := buf.String()
	assert.NotContains(t, out, "hidden line")
	assert.Contains(t, out, "visible line")
}

func TestToTelegram(t *testing.T) {
	info := slog.NewRecord(time.Now(), slog.LevelInfo, "plain", 0)
	assert.False(t, toTelegram(context.Background(), info))

	tagged := slog.NewRecord(time.Now(), slog.LevelInfo, "tagged", 0)
	tagged.AddAttrs(slog.Bool("telegram", true))
	assert.True(t, toTelegram(context.Background(), tagged))

	failure := slog.NewRecord(time.Now(), slog.LevelError, "failure", 0)
	assert.True(t, toTelegram(context.Background(), failure))
}

func TestInit_RejectsUnusableSettings(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	require.Error(t, Init(nil))

	cfg := config.Default()
	cfg.Log.Level = "verbose"
	require.Error(t, Init(cfg))
	assert.Same(t, prev, slog.Default(), "a rejected config must keep the current handler")

	cfg = config.Default()
	cfg.Log.Telegram.Token = "123:abc"
	require.Error(t, Init(cfg))

	cfg = config.Default()
	cfg.Log.Level = "warning"
	require.NoError(t, Init(cfg))
	assert.NotSame(t, prev, slog.Default())
}
