package x11

import (
	"log/slog"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
)

// Enumerator scans every screen for visible top-level windows that are not
// overlays. It is not safe for concurrent use.
type Enumerator struct {
	tree    windowTree
	logger  *slog.Logger
	windows []Geometry
	scanned bool
}

// NewEnumerator creates an Enumerator over conn. tags may be nil, in which
// case nothing is excluded as an overlay.
func NewEnumerator(conn *Connection, tags *Tagger, logger *slog.Logger) *Enumerator {
	return newEnumerator(&serverTree{conn: conn, tags: tags}, logger)
}

func newEnumerator(tree windowTree, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enumerator{tree: tree, logger: logger}
}

// IsSupported always reports true for a live enumerator.
func (e *Enumerator) IsSupported() bool { return true }

// Refresh rebuilds the window list, topmost first.
func (e *Enumerator) Refresh() {
	var found []Geometry
	for _, root := range e.tree.Roots() {
		children, err := e.tree.Children(root)
		if err != nil {
			e.logger.Debug("query tree failed", "window_id", root, "error", err)
			continue
		}

		attrs := e.tree.Attributes(children)
		for i, win := range children {
			if !e.isCandidate(win, attrs[i]) {
				continue
			}

			if e.tree.HasWMState(win) {
				if e.tree.IsTagged(win) {
					continue
				}
				geom, err := e.tree.Geometry(win)
				if err != nil {
					e.logger.Debug("get geometry failed", "window_id", win, "error", err)
					continue
				}
				found = append(found, geom)
				continue
			}

			if geom, ok := e.frameClient(root, win); ok {
				found = append(found, geom)
			}
		}
	}

	// Server order is bottom to top.
	slices.Reverse(found)
	e.windows = found
	e.scanned = true
	e.logger.Debug("windows refreshed", "count", len(found))
}

// frameClient finds the client inside a reparenting frame and returns its
// geometry in root coordinates.
func (e *Enumerator) frameClient(root, frame xproto.Window) (Geometry, bool) {
	children, err := e.tree.Children(frame)
	if err != nil {
		e.logger.Debug("query frame tree failed", "window_id", frame, "error", err)
		return Geometry{}, false
	}
	attrs := e.tree.Attributes(children)

	var client, fallback xproto.Window
	for i := len(children) - 1; i >= 0; i-- {
		win := children[i]
		if !e.isCandidate(win, attrs[i]) {
			continue
		}
		if e.tree.HasWMState(win) {
			client = win
			break
		}
		if fallback == 0 {
			fallback = win
		}
	}
	if client == 0 {
		client = fallback
	}
	if client == 0 || e.tree.IsTagged(client) {
		return Geometry{}, false
	}

	geom, err := e.tree.Geometry(client)
	if err != nil {
		e.logger.Debug("get geometry failed", "window_id", client, "error", err)
		return Geometry{}, false
	}
	x, y, err := e.tree.Translate(frame, root, geom.X, geom.Y)
	if err != nil {
		e.logger.Debug("translate coordinates failed", "window_id", client, "error", err)
		return Geometry{}, false
	}
	geom.X, geom.Y = x, y
	return geom, true
}

func (e *Enumerator) isCandidate(win xproto.Window, attrs windowAttrs) bool {
	return attrs.ok &&
		attrs.class == xproto.WindowClassInputOutput &&
		attrs.mapState == xproto.MapStateViewable &&
		!e.tree.IsHidden(win)
}

// Windows returns a copy of the last scan, topmost first.
func (e *Enumerator) Windows() []Geometry {
	return slices.Clone(e.windows)
}

// Find returns the topmost window containing p, or the empty rectangle.
// The first call scans; later calls use the cached list until Refresh.
func (e *Enumerator) Find(p Point) Geometry {
	geom, _ := e.Lookup(p)
	return geom
}

// Lookup is Find with an explicit found flag.
func (e *Enumerator) Lookup(p Point) (Geometry, bool) {
	if !e.scanned {
		e.Refresh()
	}
	for _, geom := range e.windows {
		if geom.Contains(p) {
			return geom, true
		}
	}
	return Geometry{}, false
}
