package observe

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/1broseidon/pxruler/internal/xrecord"
	"github.com/BurntSushi/xgb/xproto"
)

// ChangeFunc receives the new geometry of a reconfigured window. It runs on
// the worker goroutine and must not call Stop, which waits for that
// goroutine.
type ChangeFunc func(window uint32, x, y int16, width, height uint16)

// WindowConfig configures a WindowObserver.
type WindowConfig struct {
	Opener   Opener
	Tags     TagChecker
	OnChange ChangeFunc
	Logger   *slog.Logger
}

// WindowObserver reports ConfigureNotify events for every window except
// the application's own overlays. Its worker waits without a timeout and
// Stop wakes it through a cancellation channel.
type WindowObserver struct {
	opener   Opener
	tags     TagChecker
	onChange ChangeFunc
	logger   *slog.Logger
	support  support

	mu     sync.Mutex
	worker *worker
}

// NewWindowObserver creates a stopped observer.
func NewWindowObserver(cfg WindowConfig) *WindowObserver {
	logger := discardLogger(cfg.Logger)
	return &WindowObserver{
		opener:   cfg.Opener,
		tags:     cfg.Tags,
		onChange: cfg.OnChange,
		logger:   logger,
		support:  support{opener: cfg.Opener, logger: logger},
	}
}

// IsSupported reports whether the display offers global recording.
func (o *WindowObserver) IsSupported() bool {
	return o.support.check("windows")
}

// Running reports whether a worker has been started and not yet stopped.
func (o *WindowObserver) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.worker != nil
}

// Start creates the cancellation channel and launches the worker.
// Starting a running observer does nothing.
func (o *WindowObserver) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.worker != nil {
		return
	}
	o.worker = newWorker(newWakeChannel())
	go o.run(o.worker)
}

// Stop clears the run flag, wakes the worker and waits for it to exit.
// The flag is cleared before the wake so the worker cannot wait again.
// The cancellation channel is released with the worker.
func (o *WindowObserver) Stop() {
	o.mu.Lock()
	w := o.worker
	o.worker = nil
	o.mu.Unlock()
	if w == nil {
		return
	}
	w.running.Store(false)
	if err := w.wake.signal(); errors.Is(err, errWakePending) {
		o.logger.Debug("window observer: wake already pending")
	}
	<-w.done
}

// Close stops the observer if it is still running.
func (o *WindowObserver) Close() error {
	o.Stop()
	return nil
}

func (o *WindowObserver) run(w *worker) {
	defer close(w.done)

	src, err := o.opener.Open(xrecord.DeliveredEvent(xproto.ConfigureNotify), o.handle)
	if err != nil {
		o.logger.Error("window observer: failed to start recording", "error", err)
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			o.logger.Warn("window observer: teardown failed", "error", err)
		}
	}()
	o.logger.Debug("window observer started")

	for w.running.Load() {
		select {
		case <-src.Ready():
		case <-w.wake.C():
		}
		if !w.running.Load() {
			break
		}
		if err := src.ProcessReplies(); err != nil {
			o.logger.Error("window observer: recording ended", "error", err)
			return
		}
	}
	o.logger.Debug("window observer stopped")
}

func (o *WindowObserver) handle(ev xrecord.Event) {
	c, ok := ev.(xrecord.ConfigureEvent)
	if !ok || o.onChange == nil {
		return
	}
	if o.tags != nil && o.tags.IsTagged(c.Window) {
		return
	}
	o.onChange(c.Window, c.X, c.Y, c.Width, c.Height)
}
