//go:build linux

package platform

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/pxruler/internal/observe"
	"github.com/1broseidon/pxruler/internal/x11"
	"github.com/1broseidon/pxruler/internal/xrecord"
)

// Detect connects to the display and returns native tracking when the
// RECORD extension is present. On any failure it returns the inert bundle
// and the reason.
func Detect(opts Options, logger *slog.Logger) (*Tracking, string) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conn, err := x11.NewConnection(opts.Display)
	if err != nil {
		reason := fmt.Sprintf("cannot connect to display: %v", err)
		logger.Warn("using inert tracking", "reason", reason)
		return Inert(), reason
	}

	recorder := xrecord.NewRecorder(opts.Display)
	if err := recorder.Supported(); err != nil {
		conn.Close()
		reason := fmt.Sprintf("global recording unavailable: %v", err)
		logger.Warn("using inert tracking", "reason", reason)
		return Inert(), reason
	}

	tags := x11.NewTagger(conn, opts.TagProperty)
	t := &Tracking{
		Pointer: observe.NewPointerObserver(observe.PointerConfig{
			Opener:      recorder,
			OnMotion:    opts.OnMotion,
			PollTimeout: opts.PollTimeout,
			Logger:      logger.With("component", "pointer"),
		}),
		Windows: observe.NewWindowObserver(observe.WindowConfig{
			Opener:   recorder,
			Tags:     tags,
			OnChange: opts.OnChange,
			Logger:   logger.With("component", "windows"),
		}),
		Finder: x11.NewEnumerator(conn, tags, logger.With("component", "finder")),
		Conn:   conn,
		Tags:   tags,
	}
	logger.Debug("native tracking ready", "display", recorder.Display())
	return t, ""
}
