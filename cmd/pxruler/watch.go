package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/x11"
)

// windowEvent is a window change carried from the worker to the main
// goroutine.
type windowEvent struct {
	window uint32
	geom   x11.Geometry
}

func runPointer(args []string) int {
	fs := flag.NewFlagSet("pointer", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pxruler pointer [--config PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print every pointer motion on the display, whichever client has focus.")
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

	motions := make(chan x11.Point, 256)
	opts := trackingOptions(cfg)
	opts.OnMotion = func(x, y int16) {
		select {
		case motions <- x11.Point{X: x, Y: y}:
		default:
		}
	}

	tracking, reason := platform.Detect(opts, logger)
	defer tracking.Close()
	if !tracking.Pointer.IsSupported() {
		fmt.Fprintf(os.Stderr, "pointer recording unavailable: %s\n", reason)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	tracking.Pointer.Start()
	for {
		select {
		case <-ctx.Done():
			return 0
		case p := <-motions:
			fmt.Printf("%d %d\n", p.X, p.Y)
		}
	}
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pxruler watch [--config PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print window move and resize events for every client.")
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

	events := make(chan windowEvent, 256)
	opts := trackingOptions(cfg)
	opts.OnChange = func(window uint32, x, y int16, width, height uint16) {
		select {
		case events <- windowEvent{window: window, geom: x11.Geometry{X: x, Y: y, Width: width, Height: height}}:
		default:
		}
	}

	tracking, reason := platform.Detect(opts, logger)
	defer tracking.Close()
	if !tracking.Windows.IsSupported() {
		fmt.Fprintf(os.Stderr, "window recording unavailable: %s\n", reason)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	tracking.Windows.Start()
	for {
		select {
		case <-ctx.Done():
			return 0
		case ev := <-events:
			fmt.Printf("0x%08x %s\n", ev.window, ev.geom)
		}
	}
}
