// Package observe runs background recordings of global pointer motion and
// window configuration changes.
//
// Each observer owns one goroutine between Start and Stop. Notifications
// are invoked on that goroutine, in the order the server recorded the
// underlying events; callers that touch goroutine-affine state must hand
// the values off themselves.
package observe

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/pxruler/internal/xrecord"
)

// Opener creates enabled recordings. *xrecord.Recorder satisfies it.
type Opener interface {
	Supported() error
	Open(sel xrecord.Selector, handler xrecord.Handler) (xrecord.Source, error)
}

// TagChecker reports whether a window is one of this application's own
// overlay windows.
type TagChecker interface {
	IsTagged(window uint32) bool
}

// support caches the result of Opener.Supported.
type support struct {
	once   sync.Once
	opener Opener
	logger *slog.Logger
	ok     bool
}

func (s *support) check(component string) bool {
	s.once.Do(func() {
		if err := s.opener.Supported(); err != nil {
			s.logger.Info("global tracking unavailable", "component", component, "error", err)
			return
		}
		s.ok = true
	})
	return s.ok
}

// worker is the state of one started worker goroutine. Stop detaches it
// from the observer under the lock and waits on done outside it, so a
// later Start gets a fresh flag.
type worker struct {
	running atomic.Bool
	done    chan struct{}
	// wake is nil for workers that poll instead.
	wake *wakeChannel
}

func newWorker(wake *wakeChannel) *worker {
	w := &worker{done: make(chan struct{}), wake: wake}
	w.running.Store(true)
	return w
}

func discardLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
