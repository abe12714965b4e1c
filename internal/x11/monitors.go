package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the root position p lies on m.
func (m Monitor) Contains(p Point) bool {
	x, y := int(p.X), int(p.Y)
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR. Servers without
// RandR get one monitor per X screen.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return c.screenMonitors(), nil
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	if len(monitors) == 0 {
		return c.screenMonitors(), nil
	}
	return monitors, nil
}

func (c *Connection) screenMonitors() []Monitor {
	setup := xproto.Setup(c.XUtil.Conn())
	monitors := make([]Monitor, 0, len(setup.Roots))
	for i, screen := range setup.Roots {
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   fmt.Sprintf("Screen%d", i),
			Width:  int(screen.WidthInPixels),
			Height: int(screen.HeightInPixels),
		})
	}
	return monitors
}

// PointerPosition queries the pointer on the default screen.
func (c *Connection) PointerPosition() (Point, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return Point{X: reply.RootX, Y: reply.RootY}, nil
}

// MonitorAt returns the monitor containing p, if any.
func MonitorAt(monitors []Monitor, p Point) (Monitor, bool) {
	for _, m := range monitors {
		if m.Contains(p) {
			return m, true
		}
	}
	return Monitor{}, false
}
