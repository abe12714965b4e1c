package mcp

import (
	"sync"
	"time"

	"github.com/1broseidon/pxruler/internal/x11"
)

// DefaultRecentChanges is the ring size used when none is given.
const DefaultRecentChanges = 64

// Activity collects observer notifications for the tools. Its Record
// methods are the observer callbacks and run on the worker goroutines.
type Activity struct {
	mu sync.Mutex

	pointer     x11.Point
	pointerAt   time.Time
	pointerSeen bool

	ring  []WindowChange
	next  int
	total uint64

	now func() time.Time
}

// NewActivity creates an Activity keeping the last size window changes.
func NewActivity(size int) *Activity {
	if size <= 0 {
		size = DefaultRecentChanges
	}
	return &Activity{
		ring: make([]WindowChange, 0, size),
		now:  time.Now,
	}
}

// RecordMotion stores the latest pointer position.
func (a *Activity) RecordMotion(x, y int16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pointer = x11.Point{X: x, Y: y}
	a.pointerAt = a.now()
	a.pointerSeen = true
}

// RecordChange appends a window change, overwriting the oldest when full.
func (a *Activity) RecordChange(window uint32, x, y int16, width, height uint16) {
	change := WindowChange{
		WindowID: window,
		X:        int(x),
		Y:        int(y),
		Width:    int(width),
		Height:   int(height),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	change.At = a.now().Format(time.RFC3339Nano)
	if len(a.ring) < cap(a.ring) {
		a.ring = append(a.ring, change)
	} else {
		a.ring[a.next] = change
	}
	a.next = (a.next + 1) % cap(a.ring)
	a.total++
}

// Pointer returns the last recorded position.
func (a *Activity) Pointer() (x11.Point, time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pointer, a.pointerAt, a.pointerSeen
}

// Recent returns up to limit changes, newest first. limit <= 0 returns
// everything buffered.
func (a *Activity) Recent(limit int) []WindowChange {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.ring)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]WindowChange, 0, n)
	for i := 1; i <= n; i++ {
		idx := (a.next - i + cap(a.ring)) % cap(a.ring)
		out = append(out, a.ring[idx])
	}
	return out
}

// Total counts every change ever recorded. It doubles as a generation
// number for deciding when the window list is stale.
func (a *Activity) Total() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}
