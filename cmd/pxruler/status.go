package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/x11"
)

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pxruler status [--config PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show whether global pointer and window recording is available.")
		fs.PrintDefaults()
	}
	if ok, code := parseFlags(fs, args); !ok {
		return code
	}

	cfg, logger, err := common.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	tracking, reason := platform.Detect(trackingOptions(cfg), logger)
	defer tracking.Close()

	display := cfg.Display
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	fmt.Printf("Display:          %s\n", display)
	if !tracking.Native() {
		fmt.Printf("Tracking:         inert (%s)\n", reason)
		return 0
	}
	fmt.Println("Tracking:         native")
	fmt.Printf("Pointer motion:   %s\n", supportLabel(tracking.Pointer.IsSupported()))
	fmt.Printf("Window changes:   %s\n", supportLabel(tracking.Windows.IsSupported()))

	tracking.Finder.Refresh()
	fmt.Printf("Visible windows:  %d\n", len(tracking.List()))

	screens, err := tracking.Screens()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list screens: %v\n", err)
		return 1
	}
	fmt.Println("Screens:")
	for _, m := range screens {
		fmt.Printf("  %d  %-10s %dx%d%+d%+d\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
	}
	return 0
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	common := addCommonFlags(fs)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pxruler windows [--json] [--config PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List visible top-level windows, topmost first.")
		fs.PrintDefaults()
	}
	if ok, code := parseFlags(fs, args); !ok {
		return code
	}

	cfg, logger, err := common.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	tracking, reason := platform.Detect(trackingOptions(cfg), logger)
	defer tracking.Close()
	if !tracking.Finder.IsSupported() {
		fmt.Fprintf(os.Stderr, "window lookup unavailable: %s\n", reason)
		return 1
	}

	tracking.Finder.Refresh()
	windows := tracking.List()

	if *asJSON {
		return printJSON(windowsJSON(windows))
	}
	for i, g := range windows {
		fmt.Printf("%3d  %s\n", i, g)
	}
	return 0
}

func runAt(args []string) int {
	fs := flag.NewFlagSet("at", flag.ContinueOnError)
	common := addCommonFlags(fs)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pxruler at [--json] X Y")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the topmost visible window containing the root coordinate X,Y.")
		fs.PrintDefaults()
	}
	if ok, code := parseFlags(fs, args); !ok {
		return code
	}

	p, err := parsePoint(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	cfg, logger, err := common.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	tracking, reason := platform.Detect(trackingOptions(cfg), logger)
	defer tracking.Close()
	if !tracking.Finder.IsSupported() {
		fmt.Fprintf(os.Stderr, "window lookup unavailable: %s\n", reason)
		return 1
	}

	g := tracking.Finder.Find(p)
	if *asJSON {
		if g.IsEmpty() {
			return printJSON(map[string]any{"found": false})
		}
		return printJSON(map[string]any{"found": true, "window": geometryJSON(g)})
	}
	if g.IsEmpty() {
		fmt.Printf("no window at %d,%d\n", p.X, p.Y)
		return 1
	}
	fmt.Println(g)
	return 0
}

type windowJSON struct {
	X      int16  `json:"x"`
	Y      int16  `json:"y"`
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

func geometryJSON(g x11.Geometry) windowJSON {
	return windowJSON{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

func windowsJSON(windows []x11.Geometry) []windowJSON {
	out := make([]windowJSON, 0, len(windows))
	for _, g := range windows {
		out = append(out, geometryJSON(g))
	}
	return out
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
