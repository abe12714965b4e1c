// Package overlay draws the measurement crosshair, the highlight around the
// window under the pointer and a coordinate label, all as override-redirect
// windows tagged as the application's own.
package overlay

import (
	"fmt"

	"github.com/1broseidon/pxruler/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

const (
	DefaultColor     = 0xff3b30
	DefaultThickness = 1

	colorLabelText = 0xf5f7fa
	colorLabelBg   = 0x1f2933
)

// CreationHook is told about every window the overlay creates.
type CreationHook interface {
	WindowCreated(win, parent xproto.Window) error
}

// Options styles the overlay.
type Options struct {
	Color     uint32
	Thickness int
}

// barSet is a group of four plain colored windows.
type barSet struct {
	windows [4]xproto.Window
	mapped  bool
}

type label struct {
	window   xproto.Window
	gc       xproto.Gcontext
	font     xproto.Font
	created  bool
	mapped   bool
	disabled bool
}

// Overlay owns the crosshair, highlight and label windows. It is not safe
// for concurrent use.
type Overlay struct {
	xu        *xgbutil.XUtil
	root      xproto.Window
	hook      CreationHook
	color     uint32
	thickness int
	bounds    rect

	crosshair barSet
	highlight barSet
	label     label
	under     x11.Geometry
}

// New creates the overlay windows unmapped. hook may be nil.
func New(conn *x11.Connection, hook CreationHook, opts Options) (*Overlay, error) {
	if opts.Color == 0 {
		opts.Color = DefaultColor
	}
	if opts.Thickness < 1 {
		opts.Thickness = DefaultThickness
	}

	screen := conn.XUtil.Screen()
	o := &Overlay{
		xu:        conn.XUtil,
		root:      conn.Root,
		hook:      hook,
		color:     opts.Color,
		thickness: opts.Thickness,
		bounds:    rect{Width: int(screen.WidthInPixels), Height: int(screen.HeightInPixels)},
	}

	if err := o.createBars(&o.crosshair); err != nil {
		o.Close()
		return nil, fmt.Errorf("failed to create crosshair: %w", err)
	}
	if err := o.createBars(&o.highlight); err != nil {
		o.Close()
		return nil, fmt.Errorf("failed to create highlight: %w", err)
	}
	return o, nil
}

// Windows returns every window the overlay currently owns.
func (o *Overlay) Windows() []xproto.Window {
	var out []xproto.Window
	for _, set := range []*barSet{&o.crosshair, &o.highlight} {
		for _, w := range set.windows {
			if w != 0 {
				out = append(out, w)
			}
		}
	}
	if o.label.window != 0 {
		out = append(out, o.label.window)
	}
	return out
}

// MoveCrosshair centres the crosshair on p and updates the label.
func (o *Overlay) MoveCrosshair(p x11.Point) {
	x, y := int(p.X), int(p.Y)
	segments := crosshairSegments(x, y, o.bounds, o.thickness)
	o.showBars(&o.crosshair, segments)
	o.renderLabel(p)
}

// Highlight frames g; an empty g removes the frame.
func (o *Overlay) Highlight(g x11.Geometry) {
	o.under = g
	if g.IsEmpty() {
		o.hideBars(&o.highlight)
		return
	}
	o.showBars(&o.highlight, borderRects(rectFromGeometry(g), o.thickness))
}

// Hide unmaps everything without destroying it.
func (o *Overlay) Hide() {
	o.hideBars(&o.crosshair)
	o.hideBars(&o.highlight)
	o.hideLabel()
}

// Close destroys all overlay windows.
func (o *Overlay) Close() {
	o.destroyBars(&o.crosshair)
	o.destroyBars(&o.highlight)
	o.destroyLabel()
}

func (o *Overlay) createBars(set *barSet) error {
	for i := range set.windows {
		wid, err := o.createOverrideRedirectWindow()
		if err != nil {
			return err
		}
		set.windows[i] = wid
	}
	return nil
}

func (o *Overlay) showBars(set *barSet, rects [4]rect) {
	conn := o.xu.Conn()
	for i, r := range rects {
		if r.empty() {
			xproto.UnmapWindow(conn, set.windows[i])
			continue
		}
		o.updateWindow(set.windows[i], r, o.color)
		xproto.MapWindow(conn, set.windows[i])
	}
	set.mapped = true
}

func (o *Overlay) hideBars(set *barSet) {
	if !set.mapped {
		return
	}
	for _, w := range set.windows {
		xproto.UnmapWindow(o.xu.Conn(), w)
	}
	set.mapped = false
}

func (o *Overlay) destroyBars(set *barSet) {
	for i, w := range set.windows {
		if w != 0 {
			xproto.DestroyWindow(o.xu.Conn(), w)
		}
		set.windows[i] = 0
	}
	set.mapped = false
}

// createOverrideRedirectWindow creates a single override-redirect window
// and passes it through the creation hook.
func (o *Overlay) createOverrideRedirectWindow() (xproto.Window, error) {
	conn := o.xu.Conn()
	screen := o.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		o.root,
		0, 0, // x, y (will be updated later)
		1, 1, // width, height (will be updated later)
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Value list order follows the bit positions of the mask (low to high).
		[]uint32{o.color, 1}, // back_pixel, override_redirect=true
	).Check()
	if err != nil {
		return 0, err
	}

	if o.hook != nil {
		if err := o.hook.WindowCreated(wid, o.root); err != nil {
			xproto.DestroyWindow(conn, wid)
			return 0, err
		}
	}
	return wid, nil
}

// updateWindow moves, resizes, and recolors a window
func (o *Overlay) updateWindow(wid xproto.Window, r rect, color uint32) {
	conn := o.xu.Conn()

	xproto.ConfigureWindow(
		conn,
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(int32(r.X)),
			uint32(int32(r.Y)),
			uint32(max(r.Width, 1)),
			uint32(max(r.Height, 1)),
			xproto.StackModeAbove, // Keep on top
		},
	)
	xproto.ChangeWindowAttributes(conn, wid, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}

func (o *Overlay) renderLabel(p x11.Point) {
	if !o.ensureLabel() {
		return
	}
	conn := o.xu.Conn()
	lines := labelLines(p, o.under)
	width, height := labelDimensions(lines)
	x, y := labelOrigin(int(p.X), int(p.Y), o.bounds, width, height)

	o.updateWindow(o.label.window, rect{X: x, Y: y, Width: width, Height: height}, colorLabelBg)

	baseline := labelPaddingY + labelLineHeight - 3
	for i, line := range lines {
		if len(line) > 255 {
			line = line[:255]
		}
		xproto.ImageText8(
			conn,
			byte(len(line)),
			xproto.Drawable(o.label.window),
			o.label.gc,
			int16(labelPaddingX),
			int16(baseline+i*labelLineHeight),
			line,
		)
	}

	xproto.MapWindow(conn, o.label.window)
	o.label.mapped = true
}

// ensureLabel creates the label window, font and GC on first use. A server
// without any of the fallback fonts disables the label for good.
func (o *Overlay) ensureLabel() bool {
	if o.label.disabled {
		return false
	}
	if o.label.created {
		return true
	}

	conn := o.xu.Conn()
	win, err := o.createOverrideRedirectWindow()
	if err != nil {
		o.label.disabled = true
		return false
	}
	o.label.window = win

	font, err := xproto.NewFontId(conn)
	if err != nil {
		o.disableLabel()
		return false
	}
	opened := false
	for _, name := range []string{"fixed", "7x14", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		o.disableLabel()
		return false
	}
	o.label.font = font

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		o.disableLabel()
		return false
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(win),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{
			colorLabelText, // foreground
			colorLabelBg,   // background
			uint32(font),   // font
			0,              // graphics_exposures=false
		},
	).Check()
	if err != nil {
		o.disableLabel()
		return false
	}
	o.label.gc = gc
	o.label.created = true
	return true
}

func (o *Overlay) disableLabel() {
	o.destroyLabel()
	o.label.disabled = true
}

func (o *Overlay) hideLabel() {
	if !o.label.mapped {
		return
	}
	xproto.UnmapWindow(o.xu.Conn(), o.label.window)
	o.label.mapped = false
}

func (o *Overlay) destroyLabel() {
	conn := o.xu.Conn()
	if o.label.gc != 0 {
		xproto.FreeGC(conn, o.label.gc)
	}
	if o.label.font != 0 {
		xproto.CloseFont(conn, o.label.font)
	}
	if o.label.window != 0 {
		xproto.DestroyWindow(conn, o.label.window)
	}
	disabled := o.label.disabled
	o.label = label{disabled: disabled}
}
