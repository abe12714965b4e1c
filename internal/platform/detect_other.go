//go:build !linux

package platform

import "log/slog"

// Detect always returns inert tracking outside Linux.
func Detect(opts Options, logger *slog.Logger) (*Tracking, string) {
	reason := "global recording requires X11 on Linux"
	if logger != nil {
		logger.Info("using inert tracking", "reason", reason)
	}
	return Inert(), reason
}
