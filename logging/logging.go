// Package logging installs the process-wide slog handler.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"
	slogtelegram "github.com/samber/slog-telegram/v2"

	"github.com/cyberFlowTech/zapry-convpolicy-go/config"
)

// Preinit installs a console handler so that config loading can log.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})))
}

// Init replaces the preinit handler with the configured router: console
// output at the configured level plus, when a bot token is set, Telegram for
// errors and records tagged with a "telegram" attribute. The preinit handler
// stays in place when the log settings are unusable.
func Init(cfg *config.Config) error {
	if cfg == nil {
		return oops.In("logging").Errorf("missing config")
	}
	if _, ok := lookupLevel(cfg.Log.Level); !ok {
		return oops.In("logging").With("level", cfg.Log.Level).Errorf("unknown log level %q", cfg.Log.Level)
	}
	if cfg.Log.Telegram.Token != "" && cfg.Log.Telegram.ChatID == "" {
		return oops.In("logging").Errorf("telegram token set without chat_id")
	}
	slog.SetDefault(slog.New(NewHandler(cfg, os.Stderr)))
	return nil
}

// NewHandler builds the routed handler writing console output to w.
func NewHandler(cfg *config.Config, w io.Writer) slog.Handler {
	router := slogmulti.Router()

	router = router.Add(console.NewHandler(w, &console.HandlerOptions{
		AddSource: true,
		Level:     ParseLevel(cfg.Log.Level),
	}))

	if cfg.Log.Telegram.Token != "" {
		router = router.Add(
			slogtelegram.Option{
				Level:     slog.LevelDebug,
				Token:     cfg.Log.Telegram.Token,
				Username:  cfg.Log.Telegram.ChatID,
				AddSource: true,
			}.NewTelegramHandler(),
			toTelegram,
		)
	}

	return router.Handler()
}

func toTelegram(_ context.Context, r slog.Record) bool {
	hasTelegram := false

	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == "telegram" {
			hasTelegram = true
			return false
		}

		return true
	})

	return r.Level >= slog.LevelError || hasTelegram
}

// ParseLevel maps a config level name to a slog level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	l, _ := lookupLevel(level)
	return l
}

func lookupLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
