package mcp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/1broseidon/pxruler/internal/platform"
	"github.com/1broseidon/pxruler/internal/x11"
)

type fakeFinder struct {
	supported bool
	windows   []x11.Geometry
	refreshes int
}

func (f *fakeFinder) Refresh()          { f.refreshes++ }
func (f *fakeFinder) IsSupported() bool { return f.supported }

func (f *fakeFinder) Find(p x11.Point) x11.Geometry {
	for _, g := range f.windows {
		if g.Contains(p) {
			return g
		}
	}
	return x11.Geometry{}
}

func (f *fakeFinder) Windows() []x11.Geometry { return f.windows }

func testServer(finder *fakeFinder) (*Server, *Activity) {
	activity := NewActivity(8)
	s := newServer(serverDeps{
		finder:           finder,
		activity:         activity,
		pointerSupported: true,
		windowsSupported: true,
		screens: func() ([]x11.Monitor, error) {
			return []x11.Monitor{{ID: 0, Name: "DP-1", Width: 1920, Height: 1080}}, nil
		},
		queryPointer: func() (x11.Point, error) {
			return x11.Point{X: 7, Y: 9}, nil
		},
	})
	return s, activity
}

func TestListWindowsRescansOnlyWhenStale(t *testing.T) {
	finder := &fakeFinder{supported: true, windows: []x11.Geometry{
		{X: 0, Y: 0, Width: 100, Height: 100},
		{X: 50, Y: 50, Width: 10, Height: 10},
	}}
	s, activity := testServer(finder)
	ctx := context.Background()

	_, out, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if !out.Supported || len(out.Windows) != 2 || out.Windows[0].Width != 100 {
		t.Fatalf("list_windows = %+v", out)
	}
	if finder.refreshes != 1 {
		t.Fatalf("refreshes after first list = %d, want 1", finder.refreshes)
	}

	s.handleListWindows(ctx, nil, ListWindowsInput{})
	if finder.refreshes != 1 {
		t.Errorf("unchanged list rescanned: refreshes = %d", finder.refreshes)
	}

	activity.RecordChange(1, 0, 0, 10, 10)
	s.handleListWindows(ctx, nil, ListWindowsInput{})
	if finder.refreshes != 2 {
		t.Errorf("list after a window change: refreshes = %d, want 2", finder.refreshes)
	}

	s.handleListWindows(ctx, nil, ListWindowsInput{Refresh: true})
	if finder.refreshes != 3 {
		t.Errorf("forced list: refreshes = %d, want 3", finder.refreshes)
	}
}

func TestListWindowsUnsupported(t *testing.T) {
	finder := &fakeFinder{}
	s, _ := testServer(finder)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if out.Supported || len(out.Windows) != 0 || out.Windows == nil {
		t.Fatalf("list_windows = %+v, want unsupported with an empty list", out)
	}
	if finder.refreshes != 0 {
		t.Errorf("unsupported finder was refreshed")
	}
}

func TestWindowAt(t *testing.T) {
	finder := &fakeFinder{supported: true, windows: []x11.Geometry{
		{X: 10, Y: 10, Width: 20, Height: 20},
	}}
	s, _ := testServer(finder)
	ctx := context.Background()

	tests := []struct {
		name  string
		x, y  int
		found bool
	}{
		{"inside", 15, 15, true},
		{"outside", 100, 100, false},
		{"edge exclusive", 30, 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleWindowAt(ctx, nil, WindowAtInput{X: tt.x, Y: tt.y})
			if err != nil {
				t.Fatalf("window_at: %v", err)
			}
			if out.Found != tt.found {
				t.Fatalf("window_at(%d,%d).Found = %v, want %v", tt.x, tt.y, out.Found, tt.found)
			}
			if tt.found && (out.Window == nil || out.Window.X != 10 || out.Window.Width != 20) {
				t.Fatalf("window_at(%d,%d).Window = %+v", tt.x, tt.y, out.Window)
			}
		})
	}
}

func TestWindowAtRejectsOutOfRange(t *testing.T) {
	s, _ := testServer(&fakeFinder{supported: true})
	if _, _, err := s.handleWindowAt(context.Background(), nil, WindowAtInput{X: math.MaxInt16 + 1}); err == nil {
		t.Fatal("window_at accepted a coordinate beyond int16")
	}
}

func TestRefreshWindows(t *testing.T) {
	finder := &fakeFinder{supported: true, windows: make([]x11.Geometry, 3)}
	s, _ := testServer(finder)

	_, out, err := s.handleRefreshWindows(context.Background(), nil, RefreshWindowsInput{})
	if err != nil {
		t.Fatalf("refresh_windows: %v", err)
	}
	if out.Count != 3 || finder.refreshes != 1 {
		t.Fatalf("refresh_windows = %+v, refreshes = %d", out, finder.refreshes)
	}
}

func TestPointerPosition(t *testing.T) {
	s, activity := testServer(&fakeFinder{})
	ctx := context.Background()

	_, out, err := s.handlePointerPosition(ctx, nil, PointerPositionInput{})
	if err != nil {
		t.Fatalf("pointer_position: %v", err)
	}
	if out.Source != "queried" || out.X != 7 || out.Y != 9 {
		t.Fatalf("pointer_position before motion = %+v, want queried (7,9)", out)
	}

	activity.RecordMotion(100, 200)
	_, out, _ = s.handlePointerPosition(ctx, nil, PointerPositionInput{})
	if out.Source != "recorded" || out.X != 100 || out.Y != 200 || !out.Observing {
		t.Fatalf("pointer_position after motion = %+v, want recorded (100,200)", out)
	}

	_, out, _ = s.handlePointerPosition(ctx, nil, PointerPositionInput{Live: true})
	if out.Source != "queried" {
		t.Fatalf("live pointer_position source = %q, want queried", out.Source)
	}
}

func TestPointerPositionInert(t *testing.T) {
	s := newServer(serverDeps{finder: &fakeFinder{}})
	_, _, err := s.handlePointerPosition(context.Background(), nil, PointerPositionInput{})
	if !errors.Is(err, platform.ErrInert) {
		t.Fatalf("pointer_position error = %v, want ErrInert", err)
	}
}

func TestRecentWindowChanges(t *testing.T) {
	s, activity := testServer(&fakeFinder{})
	activity.RecordChange(0x400001, 1, 2, 3, 4)
	activity.RecordChange(0x400002, 5, 6, 7, 8)

	_, out, err := s.handleRecentChanges(context.Background(), nil, RecentChangesInput{Limit: 1})
	if err != nil {
		t.Fatalf("recent_window_changes: %v", err)
	}
	if !out.Observing || out.Total != 2 || len(out.Changes) != 1 || out.Changes[0].WindowID != 0x400002 {
		t.Fatalf("recent_window_changes = %+v", out)
	}

	if _, _, err := s.handleRecentChanges(context.Background(), nil, RecentChangesInput{Limit: -1}); err == nil {
		t.Fatal("recent_window_changes accepted a negative limit")
	}
}

func TestListScreens(t *testing.T) {
	s, _ := testServer(&fakeFinder{})

	_, out, err := s.handleListScreens(context.Background(), nil, ListScreensInput{})
	if err != nil {
		t.Fatalf("list_screens: %v", err)
	}
	if len(out.Screens) != 1 || out.Screens[0].Name != "DP-1" || out.Screens[0].Width != 1920 {
		t.Fatalf("list_screens = %+v", out)
	}
}

func TestListScreensInertTracking(t *testing.T) {
	s := NewServer(platform.Inert(), NewActivity(4), nil)

	_, _, err := s.handleListScreens(context.Background(), nil, ListScreensInput{})
	if !errors.Is(err, platform.ErrInert) {
		t.Fatalf("list_screens error = %v, want ErrInert", err)
	}
	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil || out.Supported {
		t.Fatalf("list_windows on inert tracking = %+v, %v", out, err)
	}
}
