package observe

import (
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/pxruler/internal/xrecord"
	"github.com/BurntSushi/xgb/xproto"
)

type change struct {
	window uint32
	x, y   int16
	w, h   uint16
}

type changeLog struct {
	mu  sync.Mutex
	got []change
	ch  chan struct{}
}

func newChangeLog() *changeLog {
	return &changeLog{ch: make(chan struct{}, 64)}
}

func (l *changeLog) record(window uint32, x, y int16, w, h uint16) {
	l.mu.Lock()
	l.got = append(l.got, change{window, x, y, w, h})
	l.mu.Unlock()
	l.ch <- struct{}{}
}

func (l *changeLog) wait(t *testing.T, n int) []change {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-l.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d of %d notifications", i, n)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]change(nil), l.got...)
}

func TestWindowStopWithoutStartIsNoop(t *testing.T) {
	o := NewWindowObserver(WindowConfig{Opener: newFakeOpener()})
	within(t, 100*time.Millisecond, "Stop", o.Stop)
}

func TestWindowStopIsImmediate(t *testing.T) {
	opener := newFakeOpener()
	o := NewWindowObserver(WindowConfig{Opener: opener})

	o.Start()
	src := opener.waitOpened(t)
	// No events ever arrive; only the wake-up can end the wait.
	within(t, 500*time.Millisecond, "Stop", o.Stop)
	if !src.isClosed() {
		t.Fatal("recording was not closed on Stop")
	}
}

func TestWindowSkipsTaggedWindows(t *testing.T) {
	opener := newFakeOpener()
	log := newChangeLog()
	o := NewWindowObserver(WindowConfig{
		Opener:   opener,
		Tags:     tagSet{42: true},
		OnChange: log.record,
	})

	o.Start()
	defer o.Stop()
	src := opener.waitOpened(t)

	src.feed(
		xrecord.ConfigureEvent{Window: 42, X: 1, Y: 1, Width: 10, Height: 10},
		xrecord.ConfigureEvent{Window: 7, X: -4, Y: 8, Width: 300, Height: 200},
		xrecord.MotionEvent{RootX: 5, RootY: 5},
		xrecord.ConfigureEvent{Window: 42, X: 2, Y: 2, Width: 10, Height: 10},
		xrecord.ConfigureEvent{Window: 8, X: 0, Y: 0, Width: 1, Height: 1},
	)
	got := log.wait(t, 2)
	want := []change{{7, -4, 8, 300, 200}, {8, 0, 0, 1, 1}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("changes = %+v, want %+v", got, want)
	}

	kind := opener.selectors[0].Kind()
	first, _ := opener.selectors[0].Bounds()
	if kind != xrecord.DeliveredEvents || first != xproto.ConfigureNotify {
		t.Fatalf("selector = %s, want delivered ConfigureNotify", opener.selectors[0])
	}
}

func TestWindowStartStopCycles(t *testing.T) {
	opener := newFakeOpener()
	o := NewWindowObserver(WindowConfig{Opener: opener})

	for i := 0; i < 5; i++ {
		o.Start()
		opener.waitOpened(t)
		within(t, 500*time.Millisecond, "Stop", o.Stop)
		o.Stop()
	}
	if o.Running() {
		t.Fatal("observer still running")
	}
	for i, src := range opener.sources {
		if !src.isClosed() {
			t.Fatalf("recording %d left open", i)
		}
	}
}

func TestWindowStopAfterOpenFailure(t *testing.T) {
	opener := newFakeOpener()
	opener.openErr = errBroken
	o := NewWindowObserver(WindowConfig{Opener: opener})

	o.Start()
	within(t, 500*time.Millisecond, "Stop", o.Stop)
}

func TestWakeChannelSignal(t *testing.T) {
	w := newWakeChannel()
	if err := w.signal(); err != nil {
		t.Fatalf("first signal: %v", err)
	}
	if err := w.signal(); err != errWakePending {
		t.Fatalf("second signal = %v, want errWakePending", err)
	}
	select {
	case <-w.C():
	default:
		t.Fatal("channel not ready after signal")
	}
	if err := w.signal(); err != nil {
		t.Fatalf("signal after drain: %v", err)
	}
}

func TestWindowCallbackCanQueryDuringStop(t *testing.T) {
	opener := newFakeOpener()
	entered := make(chan struct{})
	release := make(chan struct{})
	sawRunning := make(chan bool, 1)

	var o *WindowObserver
	o = NewWindowObserver(WindowConfig{
		Opener: opener,
		OnChange: func(uint32, int16, int16, uint16, uint16) {
			close(entered)
			<-release
			sawRunning <- o.Running()
		},
	})

	o.Start()
	src := opener.waitOpened(t)
	src.feed(xrecord.ConfigureEvent{Window: 7, Width: 1, Height: 1})
	<-entered

	stopped := make(chan struct{})
	go func() {
		o.Stop()
		close(stopped)
	}()
	waitNotRunning(t, o.Running)
	close(release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while the callback queried the observer")
	}
	if <-sawRunning {
		t.Error("Running() = true inside the callback after Stop began")
	}
}

func TestWindowStartDuringStopGetsFreshWorker(t *testing.T) {
	opener := newFakeOpener()
	entered := make(chan struct{}, 1)
	release := make(chan struct{})

	o := NewWindowObserver(WindowConfig{
		Opener: opener,
		OnChange: func(uint32, int16, int16, uint16, uint16) {
			entered <- struct{}{}
			<-release
		},
	})

	o.Start()
	first := opener.waitOpened(t)
	first.feed(xrecord.ConfigureEvent{Window: 7, Width: 1, Height: 1})
	<-entered

	stopped := make(chan struct{})
	go func() {
		o.Stop()
		close(stopped)
	}()
	waitNotRunning(t, o.Running)

	o.Start()
	second := opener.waitOpened(t)
	close(release)
	<-stopped

	if !first.isClosed() {
		t.Fatal("first recording was not closed")
	}
	if !o.Running() || second.isClosed() {
		t.Fatal("second worker did not survive the earlier Stop")
	}
	within(t, 500*time.Millisecond, "Stop", o.Stop)
	if !second.isClosed() {
		t.Fatal("second recording was not closed")
	}
}
