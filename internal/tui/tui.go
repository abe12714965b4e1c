// Package tui renders a live measurement readout in the terminal.
package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/x11"
	"golang.org/x/term"
)

const maxChanges = 8

type windowChange struct {
	window uint32
	geom   x11.Geometry
}

// TUI is the live readout. Observers feed it through OnMotion and
// OnChange; everything else runs on the goroutine calling Run.
type TUI struct {
	motions chan x11.Point
	changes chan windowChange

	tracking *platform.Tracking
	state    readout

	// Terminal state
	oldState *term.State
	width    int
	height   int
}

// readout is everything the screen shows.
type readout struct {
	pointer x11.Point
	under   x11.Geometry
	pinned  *x11.Point
	screens []x11.Monitor
	changes []windowChange
	status  string
}

// New creates a TUI. Pass OnMotion and OnChange to platform.Detect before
// calling Run.
func New() *TUI {
	return &TUI{
		motions: make(chan x11.Point, 64),
		changes: make(chan windowChange, 64),
	}
}

// OnMotion queues a pointer position, dropping it when the queue is full.
func (t *TUI) OnMotion(x, y int16) {
	select {
	case t.motions <- x11.Point{X: x, Y: y}:
	default:
	}
}

// OnChange queues a window change, dropping it when the queue is full.
func (t *TUI) OnChange(window uint32, x, y int16, width, height uint16) {
	select {
	case t.changes <- windowChange{window: window, geom: x11.Geometry{X: x, Y: y, Width: width, Height: height}}:
	default:
	}
}

// Run takes over the terminal until q, Escape, Ctrl-C or ctx ends.
func (t *TUI) Run(ctx context.Context, tracking *platform.Tracking) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("live readout requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	t.tracking = tracking

	// Enter raw mode
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.oldState = oldState
	defer t.restore()

	input := make(chan []byte)
	go readInput(input)

	if screens, err := tracking.Screens(); err == nil {
		t.state.screens = screens
	}
	if p, err := tracking.PointerPosition(); err == nil {
		t.state.pointer = p
	}
	tracking.Finder.Refresh()
	t.state.under = tracking.Finder.Find(t.state.pointer)
	t.render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case buf, ok := <-input:
			if !ok || t.handleInput(buf) {
				return nil
			}
		case p := <-t.motions:
			t.drainMotion(p)
			t.state.under = tracking.Finder.Find(t.state.pointer)
		case c := <-t.changes:
			t.recordChange(c)
			tracking.Finder.Refresh()
			t.state.under = tracking.Finder.Find(t.state.pointer)
		}
		t.render()
	}
}

// readInput forwards raw stdin chunks until read fails.
func readInput(out chan<- []byte) {
	defer close(out)
	buf := make([]byte, 32)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		out <- chunk
	}
}

func (t *TUI) drainMotion(p x11.Point) {
	for {
		select {
		case next := <-t.motions:
			p = next
		default:
			t.state.pointer = p
			return
		}
	}
}

func (t *TUI) recordChange(c windowChange) {
	t.state.changes = append([]windowChange{c}, t.state.changes...)
	if len(t.state.changes) > maxChanges {
		t.state.changes = t.state.changes[:maxChanges]
	}
}

// handleInput applies key presses and reports whether to quit.
func (t *TUI) handleInput(input []byte) bool {
	for _, b := range input {
		switch b {
		case 'q', 0x1b: // q or Escape
			return true
		case 0x03: // Ctrl+C
			return true
		case ' ', 'p': // pin or unpin the current position
			if t.state.pinned != nil {
				t.state.pinned = nil
				t.state.status = "unpinned"
			} else {
				p := t.state.pointer
				t.state.pinned = &p
				t.state.status = fmt.Sprintf("pinned at %d, %d", p.X, p.Y)
			}
		case 'r': // rescan windows
			t.tracking.Finder.Refresh()
			t.state.under = t.tracking.Finder.Find(t.state.pointer)
			t.state.status = fmt.Sprintf("rescanned %d windows", len(t.tracking.List()))
		}
	}
	return false
}

func (t *TUI) restore() {
	if t.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), t.oldState)
	}
	// Clear screen and show cursor on exit
	fmt.Print(escReset)
	fmt.Print(escShowCursor)
	fmt.Print(escClear)
	fmt.Print(escHome)
}

func (t *TUI) updateSize() {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		t.width = 80
		t.height = 24
		return
	}
	t.width = w
	t.height = h
}
