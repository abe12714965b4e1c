package observe

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/pxruler/internal/xrecord"
)

// fakeSource is an in-memory recording fed by the test.
type fakeSource struct {
	mu      sync.Mutex
	handler xrecord.Handler
	pending []xrecord.Event
	err     error
	ready   chan struct{}
	closed  bool
}

func (s *fakeSource) Ready() <-chan struct{} { return s.ready }

func (s *fakeSource) ProcessReplies() error {
	s.mu.Lock()
	events, err := s.pending, s.err
	s.pending = nil
	s.mu.Unlock()
	for _, ev := range events {
		s.handler(ev)
	}
	return err
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) feed(events ...xrecord.Event) {
	s.mu.Lock()
	s.pending = append(s.pending, events...)
	s.mu.Unlock()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeOpener hands out fakeSources and reports each one on opened.
type fakeOpener struct {
	mu        sync.Mutex
	supported error
	openErr   error
	sources   []*fakeSource
	selectors []xrecord.Selector
	opened    chan *fakeSource
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{opened: make(chan *fakeSource, 16)}
}

func (o *fakeOpener) Supported() error { return o.supported }

func (o *fakeOpener) Open(sel xrecord.Selector, handler xrecord.Handler) (xrecord.Source, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selectors = append(o.selectors, sel)
	if o.openErr != nil {
		return nil, o.openErr
	}
	src := &fakeSource{handler: handler, ready: make(chan struct{}, 1)}
	o.sources = append(o.sources, src)
	o.opened <- src
	return src, nil
}

func (o *fakeOpener) waitOpened(t *testing.T) *fakeSource {
	t.Helper()
	select {
	case src := <-o.opened:
		return src
	case <-time.After(2 * time.Second):
		t.Fatal("recording was never opened")
		return nil
	}
}

type tagSet map[uint32]bool

func (s tagSet) IsTagged(w uint32) bool { return s[w] }

var errBroken = errors.New("connection broken")

// waitGoroutines polls until the goroutine count drops to at most n.
func waitGoroutines(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > n {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines = %d, want <= %d", runtime.NumGoroutine(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func within(t *testing.T, limit time.Duration, name string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	start := time.Now()
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(limit):
		t.Fatalf("%s did not return within %v", name, limit)
	}
	t.Logf("%s took %v", name, time.Since(start))
}

// waitNotRunning polls until running reports false.
func waitNotRunning(t *testing.T, running func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for running() {
		if time.Now().After(deadline) {
			t.Fatal("observer still reports running")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
