package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/pxruler/internal/x11"
)

// ANSI escape codes
const (
	escClear      = "\x1b[2J"
	escHome       = "\x1b[H"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
	escBold       = "\x1b[1m"
	escDim        = "\x1b[2m"
	escReset      = "\x1b[0m"
	escCyan       = "\x1b[36m"
	escYellow     = "\x1b[33m"
)

func (t *TUI) render() {
	t.updateSize()

	var sb strings.Builder
	sb.WriteString(escHideCursor)
	sb.WriteString(escReset)
	sb.WriteString(escClear)
	sb.WriteString(escHome)

	lines := renderLines(t.state, t.width)
	if len(lines) > t.height {
		lines = lines[:t.height]
	}
	for i, line := range lines {
		sb.WriteString(truncateANSI(line, t.width))
		if i < len(lines)-1 {
			sb.WriteString("\r\n")
		}
	}
	fmt.Print(sb.String())
}

// renderLines lays out the readout for a terminal width columns wide.
func renderLines(r readout, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	lines = append(lines, escBold+escCyan+centerText("pxruler live", width)+escReset)
	lines = append(lines, strings.Repeat("─", width))

	lines = append(lines, fmt.Sprintf("Pointer   %s%d, %d%s", escYellow, r.pointer.X, r.pointer.Y, escReset))
	if m, ok := x11.MonitorAt(r.screens, r.pointer); ok {
		lines = append(lines, fmt.Sprintf("Screen    %s (%d, %d on screen)", m.Name, int(r.pointer.X)-m.X, int(r.pointer.Y)-m.Y))
	}
	if r.under.IsEmpty() {
		lines = append(lines, "Window    "+escDim+"none"+escReset)
	} else {
		lines = append(lines, fmt.Sprintf("Window    %s", r.under))
		lines = append(lines, fmt.Sprintf("Offset    %d, %d", int(r.pointer.X)-int(r.under.X), int(r.pointer.Y)-int(r.under.Y)))
	}
	if r.pinned != nil {
		dx, dy, dist := measure(*r.pinned, r.pointer)
		lines = append(lines, fmt.Sprintf("Pinned    %d, %d", r.pinned.X, r.pinned.Y))
		lines = append(lines, fmt.Sprintf("Distance  dx %d  dy %d  %.1f px", dx, dy, dist))
	}

	lines = append(lines, "")
	lines = append(lines, escBold+"Recent window changes"+escReset)
	if len(r.changes) == 0 {
		lines = append(lines, escDim+"  none yet"+escReset)
	}
	for _, c := range r.changes {
		lines = append(lines, fmt.Sprintf("  0x%08x  %s", c.window, c.geom))
	}

	lines = append(lines, strings.Repeat("─", width))
	if r.status != "" {
		lines = append(lines, r.status)
	}
	lines = append(lines, renderFooter())
	return lines
}

func renderFooter() string {
	keys := []string{
		"space/p:pin", "r:rescan", "q/esc/^C:quit",
	}
	return escDim + strings.Join(keys, "  ") + escReset
}

// measure returns the signed offsets from a to b and the straight-line
// distance between them.
func measure(a, b x11.Point) (dx, dy int, dist float64) {
	dx = int(b.X) - int(a.X)
	dy = int(b.Y) - int(a.Y)
	return dx, dy, math.Hypot(float64(dx), float64(dy))
}

func centerText(text string, width int) string {
	visibleLen := visibleLength(text)
	if visibleLen >= width {
		return text
	}
	padding := (width - visibleLen) / 2
	return strings.Repeat(" ", padding) + text
}

// visibleLength returns the visible length of a string, ignoring ANSI codes.
func visibleLength(s string) int {
	inEscape := false
	length := 0
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		length++
	}
	return length
}

// truncateANSI cuts text to width visible runes, keeping escape sequences
// intact and ending with an ellipsis.
func truncateANSI(text string, width int) string {
	if width < 1 {
		return ""
	}
	if visibleLength(text) <= width {
		return text
	}

	var sb strings.Builder
	inEscape := false
	visible := 0
	for _, r := range text {
		if r == '\x1b' {
			inEscape = true
			sb.WriteRune(r)
			continue
		}
		if inEscape {
			sb.WriteRune(r)
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}

		if visible >= width-1 {
			break
		}
		sb.WriteRune(r)
		visible++
	}

	sb.WriteString("…")
	sb.WriteString(escReset)
	return sb.String()
}
