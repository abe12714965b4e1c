package mcp

import (
	"context"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/x11"
)

const (
	ServerName    = "pxruler"
	ServerVersion = "0.1.0"
)

// Server exposes window and pointer tracking as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	activity  *Activity
	logger    *slog.Logger

	pointerSupported bool
	windowsSupported bool
	screens          func() ([]x11.Monitor, error)
	queryPointer     func() (x11.Point, error)

	// mu serialises finder access; the finder is single-caller.
	mu         sync.Mutex
	finder     platform.WindowFinder
	scannedGen uint64
	scanned    bool
}

// NewServer creates a server over tracking. activity must be the one whose
// Record methods were passed to platform.Detect.
func NewServer(tracking *platform.Tracking, activity *Activity, logger *slog.Logger) *Server {
	return newServer(serverDeps{
		finder:           tracking.Finder,
		activity:         activity,
		pointerSupported: tracking.Pointer.IsSupported(),
		windowsSupported: tracking.Windows.IsSupported(),
		screens:          tracking.Screens,
		queryPointer:     tracking.PointerPosition,
		logger:           logger,
	})
}

type serverDeps struct {
	finder           platform.WindowFinder
	activity         *Activity
	pointerSupported bool
	windowsSupported bool
	screens          func() ([]x11.Monitor, error)
	queryPointer     func() (x11.Point, error)
	logger           *slog.Logger
}

func newServer(deps serverDeps) *Server {
	if deps.logger == nil {
		deps.logger = slog.New(slog.DiscardHandler)
	}
	if deps.activity == nil {
		deps.activity = NewActivity(0)
	}

	s := &Server{
		activity:         deps.activity,
		logger:           deps.logger,
		pointerSupported: deps.pointerSupported,
		windowsSupported: deps.windowsSupported,
		screens:          deps.screens,
		queryPointer:     deps.queryPointer,
		finder:           deps.finder,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List visible top-level windows on every screen, topmost first, as root-relative rectangles. The application's own overlay windows are excluded. The list is rescanned automatically when window changes were observed since the last scan.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_at",
		Description: "Return the topmost visible window containing the given root coordinate, if any.",
	}, s.handleWindowAt)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "refresh_windows",
		Description: "Rescan the window tree and return how many windows were found.",
	}, s.handleRefreshWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pointer_position",
		Description: "Return the pointer position. Uses the last globally recorded motion when available, otherwise queries the X server.",
	}, s.handlePointerPosition)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "recent_window_changes",
		Description: "Return recently observed window configuration changes (move/resize), newest first, from a bounded in-memory buffer.",
	}, s.handleRecentChanges)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_screens",
		Description: "List the monitors of the display with their root-relative geometry.",
	}, s.handleListScreens)
}

// ensureScanned refreshes the finder when forced, when it was never
// scanned, or when window changes arrived since the last scan. Callers
// hold s.mu.
func (s *Server) ensureScanned(force bool) {
	gen := s.activity.Total()
	if force || !s.scanned || gen != s.scannedGen {
		s.finder.Refresh()
		s.scanned = true
		s.scannedGen = gen
	}
}
