package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/tui"
)

func runLive(args []string) int {
	fs := flag.NewFlagSet("live", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pxruler live [--config PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show a live terminal readout of the pointer, the window under it and")
		fmt.Fprintln(os.Stderr, "recent window changes. Pin a point with space to measure distances.")
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

	ui := tui.New()
	opts := trackingOptions(cfg)
	opts.OnMotion = ui.OnMotion
	opts.OnChange = ui.OnChange

	tracking, reason := platform.Detect(opts, logger)
	defer tracking.Close()
	if !tracking.Native() {
		fmt.Fprintf(os.Stderr, "live readout unavailable: %s\n", reason)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	tracking.Pointer.Start()
	tracking.Windows.Start()
	if err := ui.Run(ctx, tracking); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
