package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/pxruler/internal/overlay"
	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/x11"
)

func runCrosshair(args []string) int {
	fs := flag.NewFlagSet("crosshair", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pxruler crosshair [--config PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Draw a crosshair that follows the pointer and frame the window under it.")
		fmt.Fprintln(os.Stderr, "Press Ctrl-C to exit.")
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

	// Workers only enqueue; all X drawing happens on this goroutine.
	motions := make(chan x11.Point, 64)
	changes := make(chan struct{}, 1)
	opts := trackingOptions(cfg)
	opts.OnMotion = func(x, y int16) {
		select {
		case motions <- x11.Point{X: x, Y: y}:
		default:
		}
	}
	opts.OnChange = func(uint32, int16, int16, uint16, uint16) {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	tracking, reason := platform.Detect(opts, logger)
	defer tracking.Close()
	if !tracking.Native() {
		fmt.Fprintf(os.Stderr, "crosshair unavailable: %s\n", reason)
		return 1
	}

	ov, err := overlay.New(tracking.Conn, tracking.Tags, overlay.Options{
		Color:     uint32(cfg.Overlay.Color),
		Thickness: cfg.Overlay.Thickness,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer ov.Close()

	ctx, cancel := signalContext()
	defer cancel()

	tracking.Pointer.Start()
	tracking.Windows.Start()

	last, err := tracking.PointerPosition()
	if err != nil {
		logger.Warn("initial pointer query failed", "error", err)
	}
	track := func(p x11.Point) {
		last = p
		ov.Highlight(tracking.Finder.Find(p))
		ov.MoveCrosshair(p)
	}
	tracking.Finder.Refresh()
	track(last)

	for {
		select {
		case <-ctx.Done():
			ov.Hide()
			return 0
		case p := <-motions:
			track(latestPoint(motions, p))
		case <-changes:
			tracking.Finder.Refresh()
			track(last)
		}
	}
}

// latestPoint drains queued motion and returns the newest position.
func latestPoint(motions <-chan x11.Point, p x11.Point) x11.Point {
	for {
		select {
		case next := <-motions:
			p = next
		default:
			return p
		}
	}
}
