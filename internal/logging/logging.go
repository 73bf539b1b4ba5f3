package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/mind-engage/quizcraft/internal/lib/slogcustom"
)

// New builds the process logger. format is text, color or json.
func New(format, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	case "color":
		return slog.New(slogcustom.NewCustomHandler(w, lvl))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
