package x11

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

type fakeWindow struct {
	children []xproto.Window
	class    uint16
	mapState byte
	geom     Geometry
	wmState  bool
	hidden   bool
	tagged   bool
	gone     bool
}

type fakeTree struct {
	roots   []xproto.Window
	windows map[xproto.Window]*fakeWindow
	queries int
}

func newFakeTree(roots ...xproto.Window) *fakeTree {
	t := &fakeTree{roots: roots, windows: make(map[xproto.Window]*fakeWindow)}
	for _, root := range roots {
		t.windows[root] = &fakeWindow{class: xproto.WindowClassInputOutput, mapState: xproto.MapStateViewable}
	}
	return t
}

// client adds a managed top-level window.
func (t *fakeTree) client(parent, win xproto.Window, geom Geometry) *fakeWindow {
	w := &fakeWindow{
		class:    xproto.WindowClassInputOutput,
		mapState: xproto.MapStateViewable,
		geom:     geom,
		wmState:  true,
	}
	t.windows[win] = w
	t.windows[parent].children = append(t.windows[parent].children, win)
	return w
}

// frame adds a window without WM_STATE.
func (t *fakeTree) frame(parent, win xproto.Window, geom Geometry) *fakeWindow {
	w := t.client(parent, win, geom)
	w.wmState = false
	return w
}

func (t *fakeTree) Roots() []xproto.Window { return t.roots }

func (t *fakeTree) Children(w xproto.Window) ([]xproto.Window, error) {
	t.queries++
	fw, ok := t.windows[w]
	if !ok || fw.gone {
		return nil, errors.New("bad window")
	}
	return fw.children, nil
}

func (t *fakeTree) Attributes(ws []xproto.Window) []windowAttrs {
	out := make([]windowAttrs, len(ws))
	for i, w := range ws {
		fw, ok := t.windows[w]
		if !ok || fw.gone {
			continue
		}
		out[i] = windowAttrs{class: fw.class, mapState: fw.mapState, ok: true}
	}
	return out
}

func (t *fakeTree) Geometry(w xproto.Window) (Geometry, error) {
	fw, ok := t.windows[w]
	if !ok || fw.gone {
		return Geometry{}, errors.New("bad drawable")
	}
	return fw.geom, nil
}

// Translate assumes src is a direct child of dst.
func (t *fakeTree) Translate(src, dst xproto.Window, x, y int16) (int16, int16, error) {
	fw, ok := t.windows[src]
	if !ok {
		return 0, 0, errors.New("bad window")
	}
	return fw.geom.X + x, fw.geom.Y + y, nil
}

func (t *fakeTree) HasWMState(w xproto.Window) bool { return t.windows[w].wmState }
func (t *fakeTree) IsHidden(w xproto.Window) bool   { return t.windows[w].hidden }
func (t *fakeTree) IsTagged(w xproto.Window) bool   { return t.windows[w].tagged }

func TestRefreshOrdersTopmostFirst(t *testing.T) {
	tree := newFakeTree(1)
	a := Geometry{X: 0, Y: 0, Width: 100, Height: 100}
	b := Geometry{X: 10, Y: 10, Width: 100, Height: 100}
	c := Geometry{X: 20, Y: 20, Width: 100, Height: 100}
	tree.client(1, 10, a)
	tree.client(1, 11, b)
	tree.client(1, 12, c)

	e := newEnumerator(tree, nil)
	e.Refresh()

	got := e.Windows()
	want := []Geometry{c, b, a}
	if len(got) != len(want) {
		t.Fatalf("Windows() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Windows()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if geom := e.Find(Point{X: 50, Y: 50}); geom != c {
		t.Errorf("Find(50,50) = %v, want topmost %v", geom, c)
	}
	if geom := e.Find(Point{X: 5, Y: 5}); geom != a {
		t.Errorf("Find(5,5) = %v, want %v", geom, a)
	}
}

func TestRefreshTranslatesFrameClient(t *testing.T) {
	tree := newFakeTree(1)
	tree.frame(1, 20, Geometry{X: 10, Y: 10, Width: 210, Height: 110})
	tree.client(20, 21, Geometry{X: 5, Y: 5, Width: 200, Height: 100})

	e := newEnumerator(tree, nil)
	e.Refresh()

	got := e.Windows()
	want := Geometry{X: 15, Y: 15, Width: 200, Height: 100}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Windows() = %v, want [%v]", got, want)
	}
}

func TestRefreshFramePrefersManagedChild(t *testing.T) {
	tree := newFakeTree(1)
	tree.frame(1, 20, Geometry{X: 10, Y: 10, Width: 300, Height: 300})
	tree.client(20, 21, Geometry{X: 1, Y: 1, Width: 50, Height: 50})
	tree.frame(20, 22, Geometry{X: 2, Y: 2, Width: 20, Height: 20})

	e := newEnumerator(tree, nil)
	e.Refresh()

	got := e.Windows()
	want := Geometry{X: 11, Y: 11, Width: 50, Height: 50}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Windows() = %v, want [%v]", got, want)
	}
}

func TestRefreshFrameFallsBackToFirstCandidate(t *testing.T) {
	tree := newFakeTree(1)
	tree.frame(1, 20, Geometry{X: 10, Y: 10, Width: 300, Height: 300})
	tree.frame(20, 21, Geometry{X: 1, Y: 1, Width: 50, Height: 50})
	tree.frame(20, 22, Geometry{X: 2, Y: 2, Width: 20, Height: 20})

	e := newEnumerator(tree, nil)
	e.Refresh()

	got := e.Windows()
	want := Geometry{X: 12, Y: 12, Width: 20, Height: 20}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Windows() = %v, want [%v]", got, want)
	}
}

func TestRefreshExcludes(t *testing.T) {
	keep := Geometry{X: 0, Y: 0, Width: 10, Height: 10}
	skip := Geometry{X: 0, Y: 0, Width: 500, Height: 500}

	tests := []struct {
		name  string
		setup func(w *fakeWindow)
	}{
		{"tagged overlay", func(w *fakeWindow) { w.tagged = true }},
		{"hidden", func(w *fakeWindow) { w.hidden = true }},
		{"input only", func(w *fakeWindow) { w.class = xproto.WindowClassInputOnly }},
		{"unmapped", func(w *fakeWindow) { w.mapState = xproto.MapStateUnmapped }},
		{"unviewable", func(w *fakeWindow) { w.mapState = xproto.MapStateUnviewable }},
		{"destroyed", func(w *fakeWindow) { w.gone = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newFakeTree(1)
			tree.client(1, 10, keep)
			tt.setup(tree.client(1, 11, skip))

			e := newEnumerator(tree, nil)
			e.Refresh()

			got := e.Windows()
			if len(got) != 1 || got[0] != keep {
				t.Fatalf("Windows() = %v, want [%v]", got, keep)
			}
		})
	}
}

func TestRefreshExcludesTaggedFrameClient(t *testing.T) {
	tree := newFakeTree(1)
	tree.frame(1, 20, Geometry{X: 10, Y: 10, Width: 210, Height: 110})
	tree.client(20, 21, Geometry{X: 5, Y: 5, Width: 200, Height: 100}).tagged = true

	e := newEnumerator(tree, nil)
	e.Refresh()

	if got := e.Windows(); len(got) != 0 {
		t.Fatalf("Windows() = %v, want none", got)
	}
}

func TestRefreshCoversEveryScreen(t *testing.T) {
	tree := newFakeTree(1, 2)
	first := Geometry{X: 0, Y: 0, Width: 10, Height: 10}
	second := Geometry{X: 0, Y: 0, Width: 20, Height: 20}
	tree.client(1, 10, first)
	tree.client(2, 20, second)

	e := newEnumerator(tree, nil)
	e.Refresh()

	got := e.Windows()
	if len(got) != 2 {
		t.Fatalf("Windows() = %v, want two windows", got)
	}
	if got[0] != second || got[1] != first {
		t.Errorf("Windows() = %v, want [%v %v]", got, second, first)
	}
}

func TestFindScansLazilyAndCaches(t *testing.T) {
	tree := newFakeTree(1)
	geom := Geometry{X: 0, Y: 0, Width: 100, Height: 100}
	tree.client(1, 10, geom)

	e := newEnumerator(tree, nil)
	if tree.queries != 0 {
		t.Fatalf("queries before Find = %d, want 0", tree.queries)
	}

	if got := e.Find(Point{X: 1, Y: 1}); got != geom {
		t.Fatalf("Find() = %v, want %v", got, geom)
	}
	scans := tree.queries

	tree.client(1, 11, Geometry{X: 0, Y: 0, Width: 5, Height: 5})
	if got := e.Find(Point{X: 1, Y: 1}); got != geom {
		t.Errorf("cached Find() = %v, want %v", got, geom)
	}
	if tree.queries != scans {
		t.Errorf("Find rescanned: queries = %d, want %d", tree.queries, scans)
	}

	e.Refresh()
	if got := e.Find(Point{X: 1, Y: 1}); got.Width != 5 {
		t.Errorf("Find() after Refresh = %v, want the new topmost window", got)
	}
}

func TestFindEmpty(t *testing.T) {
	tree := newFakeTree(1)
	tree.client(1, 10, Geometry{X: 0, Y: 0, Width: 10, Height: 10})

	e := newEnumerator(tree, nil)
	got, ok := e.Lookup(Point{X: 50, Y: 50})
	if ok || got != (Geometry{}) {
		t.Fatalf("Lookup() = %v, %v; want empty, false", got, ok)
	}
	if !got.IsEmpty() {
		t.Errorf("IsEmpty() = false for %v", got)
	}

	empty := newEnumerator(newFakeTree(1), nil)
	if got := empty.Find(Point{}); got != (Geometry{}) {
		t.Errorf("Find() on empty tree = %v, want empty", got)
	}
}

func TestRefreshSkipsBrokenRoot(t *testing.T) {
	tree := newFakeTree(1, 2)
	tree.windows[1].gone = true
	geom := Geometry{X: 0, Y: 0, Width: 10, Height: 10}
	tree.client(2, 20, geom)

	e := newEnumerator(tree, nil)
	e.Refresh()

	if got := e.Windows(); len(got) != 1 || got[0] != geom {
		t.Fatalf("Windows() = %v, want [%v]", got, geom)
	}
}
