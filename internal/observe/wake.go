package observe

import "errors"

// errWakePending means a wake-up is already queued, which is enough to
// unblock the worker.
var errWakePending = errors.New("wake-up already pending")

// wakeChannel is a single-slot notification channel. Its content is never
// read, only its readiness. It is released by dropping the worker that
// owns it.
type wakeChannel struct {
	c chan struct{}
}

func newWakeChannel() *wakeChannel {
	return &wakeChannel{c: make(chan struct{}, 1)}
}

// C is ready once signal has been called.
func (w *wakeChannel) C() <-chan struct{} {
	return w.c
}

func (w *wakeChannel) signal() error {
	select {
	case w.c <- struct{}{}:
		return nil
	default:
		return errWakePending
	}
}
