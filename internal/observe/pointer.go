package observe

import (
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/pxruler/internal/xrecord"
	"github.com/BurntSushi/xgb/xproto"
)

// DefaultPollTimeout bounds how long the pointer worker waits for data
// before re-checking whether it should stop.
const DefaultPollTimeout = 2 * time.Second

// MotionFunc receives root-relative pointer coordinates. It runs on the
// worker goroutine and must not call Stop, which waits for that goroutine.
type MotionFunc func(x, y int16)

// PointerConfig configures a PointerObserver.
type PointerConfig struct {
	Opener      Opener
	OnMotion    MotionFunc
	PollTimeout time.Duration
	Logger      *slog.Logger
}

// PointerObserver reports every pointer motion on the display, whichever
// client has focus. Stop returns within one PollTimeout.
type PointerObserver struct {
	opener      Opener
	onMotion    MotionFunc
	pollTimeout time.Duration
	logger      *slog.Logger
	support     support

	mu     sync.Mutex
	worker *worker
}

// NewPointerObserver creates a stopped observer.
func NewPointerObserver(cfg PointerConfig) *PointerObserver {
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	logger := discardLogger(cfg.Logger)
	return &PointerObserver{
		opener:      cfg.Opener,
		onMotion:    cfg.OnMotion,
		pollTimeout: timeout,
		logger:      logger,
		support:     support{opener: cfg.Opener, logger: logger},
	}
}

// IsSupported reports whether the display offers global recording.
func (o *PointerObserver) IsSupported() bool {
	return o.support.check("pointer")
}

// Running reports whether a worker has been started and not yet stopped.
func (o *PointerObserver) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.worker != nil
}

// Start launches the worker. Starting a running observer does nothing.
func (o *PointerObserver) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.worker != nil {
		return
	}
	o.worker = newWorker(nil)
	go o.run(o.worker)
}

// Stop clears the run flag and blocks until the worker has exited.
func (o *PointerObserver) Stop() {
	o.mu.Lock()
	w := o.worker
	o.worker = nil
	o.mu.Unlock()
	if w == nil {
		return
	}
	w.running.Store(false)
	<-w.done
}

// Close stops the observer if it is still running.
func (o *PointerObserver) Close() error {
	o.Stop()
	return nil
}

func (o *PointerObserver) run(w *worker) {
	defer close(w.done)

	src, err := o.opener.Open(xrecord.DeviceEvent(xproto.MotionNotify), o.handle)
	if err != nil {
		o.logger.Error("pointer observer: failed to start recording", "error", err)
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			o.logger.Warn("pointer observer: teardown failed", "error", err)
		}
	}()
	o.logger.Debug("pointer observer started", "poll_timeout", o.pollTimeout)

	wait := time.NewTimer(o.pollTimeout)
	defer wait.Stop()

	for w.running.Load() {
		wait.Reset(o.pollTimeout)
		select {
		case <-src.Ready():
			if err := src.ProcessReplies(); err != nil {
				o.logger.Error("pointer observer: recording ended", "error", err)
				return
			}
		case <-wait.C:
		}
	}
	o.logger.Debug("pointer observer stopped")
}

func (o *PointerObserver) handle(ev xrecord.Event) {
	m, ok := ev.(xrecord.MotionEvent)
	if !ok || o.onMotion == nil {
		return
	}
	o.onMotion(m.RootX, m.RootY)
}
