package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// windowAttrs is the subset of window attributes the enumerator needs.
// ok is false when the query failed, e.g. the window vanished.
type windowAttrs struct {
	class    uint16
	mapState byte
	ok       bool
}

// windowTree is the server state the enumerator walks.
type windowTree interface {
	Roots() []xproto.Window
	// Children returns w's children in bottom-to-top stacking order.
	Children(w xproto.Window) ([]xproto.Window, error)
	// Attributes queries every window in ws, returning results by index.
	Attributes(ws []xproto.Window) []windowAttrs
	Geometry(w xproto.Window) (Geometry, error)
	Translate(src, dst xproto.Window, x, y int16) (int16, int16, error)
	HasWMState(w xproto.Window) bool
	IsHidden(w xproto.Window) bool
	IsTagged(w xproto.Window) bool
}

// serverTree implements windowTree with live protocol requests.
type serverTree struct {
	conn *Connection
	tags *Tagger
}

var _ windowTree = (*serverTree)(nil)

func (t *serverTree) Roots() []xproto.Window {
	return t.conn.Roots()
}

func (t *serverTree) Children(w xproto.Window) ([]xproto.Window, error) {
	reply, err := xproto.QueryTree(t.conn.XUtil.Conn(), w).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Children, nil
}

// Attributes sends all requests before waiting on any reply.
func (t *serverTree) Attributes(ws []xproto.Window) []windowAttrs {
	conn := t.conn.XUtil.Conn()
	cookies := make([]xproto.GetWindowAttributesCookie, len(ws))
	for i, w := range ws {
		cookies[i] = xproto.GetWindowAttributes(conn, w)
	}

	out := make([]windowAttrs, len(ws))
	for i, cookie := range cookies {
		reply, err := cookie.Reply()
		if err != nil {
			continue
		}
		out[i] = windowAttrs{class: reply.Class, mapState: reply.MapState, ok: true}
	}
	return out
}

func (t *serverTree) Geometry(w xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(t.conn.XUtil.Conn(), xproto.Drawable(w)).Reply()
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}, nil
}

func (t *serverTree) Translate(src, dst xproto.Window, x, y int16) (int16, int16, error) {
	reply, err := xproto.TranslateCoordinates(t.conn.XUtil.Conn(), src, dst, x, y).Reply()
	if err != nil {
		return 0, 0, err
	}
	return reply.DstX, reply.DstY, nil
}

// HasWMState reports a non-empty ICCCM WM_STATE property.
func (t *serverTree) HasWMState(w xproto.Window) bool {
	reply, err := xprop.GetProperty(t.conn.XUtil, w, "WM_STATE")
	return err == nil && reply != nil && len(reply.Value) > 0
}

// IsHidden reports _NET_WM_STATE containing _NET_WM_STATE_HIDDEN.
func (t *serverTree) IsHidden(w xproto.Window) bool {
	states, err := ewmh.WmStateGet(t.conn.XUtil, w)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (t *serverTree) IsTagged(w xproto.Window) bool {
	if t.tags == nil {
		return false
	}
	return t.tags.IsTagged(uint32(w))
}
