package platform

import (
	"errors"
	"time"

	"github.com/1broseidon/pxruler/internal/observe"
	"github.com/1broseidon/pxruler/internal/x11"
)

// ErrInert is returned by queries that need a live display.
var ErrInert = errors.New("environment tracking is unavailable")

// PointerTracker reports global pointer motion.
type PointerTracker interface {
	Start()
	Stop()
	IsSupported() bool
}

// WindowTracker reports window configuration changes.
type WindowTracker interface {
	Start()
	Stop()
	IsSupported() bool
}

// WindowFinder looks up visible top-level windows by position.
type WindowFinder interface {
	Refresh()
	Find(p x11.Point) x11.Geometry
	IsSupported() bool
}

// WindowLister is implemented by finders that expose the full scan.
type WindowLister interface {
	Windows() []x11.Geometry
}

// Options selects the display and binds the notification callbacks.
type Options struct {
	Display     string
	PollTimeout time.Duration
	TagProperty string
	OnMotion    observe.MotionFunc
	OnChange    observe.ChangeFunc
}

// Tracking bundles the observers and the finder chosen by Detect. Conn
// and Tags are nil when tracking is inert.
type Tracking struct {
	Pointer PointerTracker
	Windows WindowTracker
	Finder  WindowFinder
	Conn    *x11.Connection
	Tags    *x11.Tagger
}

// Native reports whether the bundle talks to a display.
func (t *Tracking) Native() bool {
	return t.Conn != nil
}

// Screens lists the monitors of the display.
func (t *Tracking) Screens() ([]x11.Monitor, error) {
	if t.Conn == nil {
		return nil, ErrInert
	}
	return t.Conn.GetMonitors()
}

// PointerPosition queries the pointer once.
func (t *Tracking) PointerPosition() (x11.Point, error) {
	if t.Conn == nil {
		return x11.Point{}, ErrInert
	}
	return t.Conn.PointerPosition()
}

// List returns the finder's last scan when the finder supports it.
func (t *Tracking) List() []x11.Geometry {
	if lister, ok := t.Finder.(WindowLister); ok {
		return lister.Windows()
	}
	return nil
}

// Close stops both observers, then releases the display connection.
func (t *Tracking) Close() {
	t.Pointer.Stop()
	t.Windows.Stop()
	if t.Conn != nil {
		t.Conn.Close()
		t.Conn = nil
	}
}
