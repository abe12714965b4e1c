package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/1broseidon/pxruler/internal/config"
	"github.com/1broseidon/pxruler/internal/logging"
	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "at":
		os.Exit(runAt(os.Args[2:]))
	case "pointer":
		os.Exit(runPointer(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "crosshair":
		os.Exit(runCrosshair(os.Args[2:]))
	case "live":
		os.Exit(runLive(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pxruler <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  status              Show display, recording and screen status")
	fmt.Fprintln(w, "  windows             List visible top-level windows, topmost first")
	fmt.Fprintln(w, "  at X Y              Show the window under a root coordinate")
	fmt.Fprintln(w, "  pointer             Print global pointer motion until interrupted")
	fmt.Fprintln(w, "  watch               Print window move/resize events until interrupted")
	fmt.Fprintln(w, "  crosshair           Show a measuring crosshair that follows the pointer")
	fmt.Fprintln(w, "  live                Live terminal readout with a pin-and-measure ruler")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'pxruler <command> --help' for command-specific options.")
}

// commonFlags are accepted by every command that talks to the display.
type commonFlags struct {
	configPath *string
	display    *string
	verbose    *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: fs.String("config", "", "Config file path (default: ~/.config/pxruler/config.yaml)"),
		display:    fs.String("display", "", "X display to use (overrides config and $DISPLAY)"),
		verbose:    fs.Bool("v", false, "Enable debug logging"),
	}
}

// setup loads the configuration and builds the logger.
func (c *commonFlags) setup() (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(*c.configPath)
	if err != nil {
		return nil, nil, err
	}
	if *c.display != "" {
		cfg.Display = *c.display
	}

	level := cfg.SlogLevel()
	if *c.verbose {
		level = slog.LevelDebug
	}
	return cfg, logging.New(os.Stderr, level, cfg.Logging.Format), nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func trackingOptions(cfg *config.Config) platform.Options {
	return platform.Options{
		Display:     cfg.Display,
		PollTimeout: cfg.PollTimeout(),
		TagProperty: cfg.TagProperty,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (ok bool, code int) {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, 0
		}
		return false, 2
	}
	return true, 0
}

// parseCoordinate parses one root coordinate into the protocol's range.
func parseCoordinate(name, value string) (int16, error) {
	v, err := strconv.ParseInt(value, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s coordinate %q", name, value)
	}
	return int16(v), nil
}

func parsePoint(args []string) (x11.Point, error) {
	if len(args) != 2 {
		return x11.Point{}, fmt.Errorf("expected X and Y, got %d arguments", len(args))
	}
	x, err := parseCoordinate("x", args[0])
	if err != nil {
		return x11.Point{}, err
	}
	y, err := parseCoordinate("y", args[1])
	if err != nil {
		return x11.Point{}, err
	}
	return x11.Point{X: x, Y: y}, nil
}

func supportLabel(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
