package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/pxruler/internal/mcp"
	"github.com/1broseidon/pxruler/internal/platform"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pxruler mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'pxruler mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pxruler mcp serve [--config PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server on stdio. Designed to be invoked by MCP clients.")
		fmt.Fprintln(os.Stderr, "Logs go to stderr; stdout carries the protocol.")
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

	activity := mcp.NewActivity(cfg.MCP.RecentChanges)
	opts := trackingOptions(cfg)
	opts.OnMotion = activity.RecordMotion
	opts.OnChange = activity.RecordChange

	tracking, reason := platform.Detect(opts, logger)
	defer tracking.Close()
	if !tracking.Native() {
		logger.Warn("serving without a display", "reason", reason)
	}
	tracking.Pointer.Start()
	tracking.Windows.Start()

	server := mcp.NewServer(tracking, activity, logger.With("component", "mcp"))

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		return 1
	}
	return 0
}
