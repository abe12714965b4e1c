package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection used for window queries and
// properties. Recordings open their own connections.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to display, or $DISPLAY when display is empty.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Roots returns the root window of every screen.
func (c *Connection) Roots() []xproto.Window {
	setup := xproto.Setup(c.XUtil.Conn())
	roots := make([]xproto.Window, 0, len(setup.Roots))
	for _, screen := range setup.Roots {
		roots = append(roots, screen.Root)
	}
	if len(roots) == 0 {
		roots = append(roots, c.Root)
	}
	return roots
}

// IsRoot reports whether w is the root of any screen.
func (c *Connection) IsRoot(w xproto.Window) bool {
	for _, root := range c.Roots() {
		if root == w {
			return true
		}
	}
	return false
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
