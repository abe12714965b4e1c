package mcp

import (
	"context"
	"fmt"
	"math"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/x11"
)

func windowInfo(g x11.Geometry) WindowInfo {
	return WindowInfo{X: int(g.X), Y: int(g.Y), Width: int(g.Width), Height: int(g.Height)}
}

func toPoint(x, y int) (x11.Point, error) {
	if x < math.MinInt16 || x > math.MaxInt16 || y < math.MinInt16 || y > math.MaxInt16 {
		return x11.Point{}, fmt.Errorf("coordinate (%d, %d) is outside the X11 coordinate range", x, y)
	}
	return x11.Point{X: int16(x), Y: int16(y)}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	out := ListWindowsOutput{Supported: s.finder.IsSupported(), Windows: []WindowInfo{}}
	if !out.Supported {
		return nil, out, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureScanned(args.Refresh)

	lister, ok := s.finder.(platform.WindowLister)
	if !ok {
		return nil, out, nil
	}
	for _, g := range lister.Windows() {
		out.Windows = append(out.Windows, windowInfo(g))
	}
	return nil, out, nil
}

func (s *Server) handleWindowAt(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowAtInput) (*mcpsdk.CallToolResult, WindowAtOutput, error) {
	p, err := toPoint(args.X, args.Y)
	if err != nil {
		return nil, WindowAtOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finder.IsSupported() {
		s.ensureScanned(args.Refresh)
	}

	g := s.finder.Find(p)
	if g.IsEmpty() {
		return nil, WindowAtOutput{Found: false}, nil
	}
	info := windowInfo(g)
	return nil, WindowAtOutput{Found: true, Window: &info}, nil
}

func (s *Server) handleRefreshWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ RefreshWindowsInput) (*mcpsdk.CallToolResult, RefreshWindowsOutput, error) {
	out := RefreshWindowsOutput{Supported: s.finder.IsSupported()}
	if !out.Supported {
		return nil, out, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureScanned(true)
	if lister, ok := s.finder.(platform.WindowLister); ok {
		out.Count = len(lister.Windows())
	}
	s.logger.Debug("windows refreshed via mcp", "count", out.Count)
	return nil, out, nil
}

func (s *Server) handlePointerPosition(_ context.Context, _ *mcpsdk.CallToolRequest, args PointerPositionInput) (*mcpsdk.CallToolResult, PointerPositionOutput, error) {
	if !args.Live {
		if p, at, ok := s.activity.Pointer(); ok {
			return nil, PointerPositionOutput{X: int(p.X), Y: int(p.Y), Source: "recorded", At: at.Format(time.RFC3339Nano), Observing: s.pointerSupported}, nil
		}
	}

	if s.queryPointer == nil {
		return nil, PointerPositionOutput{}, platform.ErrInert
	}
	p, err := s.queryPointer()
	if err != nil {
		return nil, PointerPositionOutput{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return nil, PointerPositionOutput{X: int(p.X), Y: int(p.Y), Source: "queried", At: s.activity.now().Format(time.RFC3339Nano), Observing: s.pointerSupported}, nil
}

func (s *Server) handleRecentChanges(_ context.Context, _ *mcpsdk.CallToolRequest, args RecentChangesInput) (*mcpsdk.CallToolResult, RecentChangesOutput, error) {
	if args.Limit < 0 {
		return nil, RecentChangesOutput{}, fmt.Errorf("limit must be non-negative")
	}
	return nil, RecentChangesOutput{
		Observing: s.windowsSupported,
		Total:     s.activity.Total(),
		Changes:   s.activity.Recent(args.Limit),
	}, nil
}

func (s *Server) handleListScreens(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListScreensInput) (*mcpsdk.CallToolResult, ListScreensOutput, error) {
	if s.screens == nil {
		return nil, ListScreensOutput{}, platform.ErrInert
	}
	monitors, err := s.screens()
	if err != nil {
		return nil, ListScreensOutput{}, fmt.Errorf("failed to list screens: %w", err)
	}

	out := ListScreensOutput{Screens: make([]ScreenInfo, 0, len(monitors))}
	for _, m := range monitors {
		out.Screens = append(out.Screens, ScreenInfo{
			ID:     m.ID,
			Name:   m.Name,
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		})
	}
	return nil, out, nil
}
