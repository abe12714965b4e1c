// Package logging builds the slog logger used across pxruler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

const (
	FormatAuto   = "auto"
	FormatText   = "text"
	FormatPretty = "pretty"
)

// New returns a logger writing to w. FormatAuto picks the pretty handler
// when w is a terminal and plain slog text otherwise.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if format == FormatAuto {
		format = FormatText
		if IsTerminal(w) {
			format = FormatPretty
		}
	}

	if format == FormatPretty {
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel(level),
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		})
		return slog.New(handler)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmlog.DebugLevel
	case level <= slog.LevelInfo:
		return charmlog.InfoLevel
	case level <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
