package x11

import "testing"

func TestGeometryContains(t *testing.T) {
	g := Geometry{X: 10, Y: 20, Width: 30, Height: 40}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"top left corner", Point{X: 10, Y: 20}, true},
		{"inside", Point{X: 25, Y: 45}, true},
		{"right edge exclusive", Point{X: 40, Y: 30}, false},
		{"bottom edge exclusive", Point{X: 20, Y: 60}, false},
		{"left of", Point{X: 9, Y: 30}, false},
		{"above", Point{X: 20, Y: 19}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestGeometryContainsNearLimits(t *testing.T) {
	g := Geometry{X: 32000, Y: 32000, Width: 65535, Height: 65535}
	if !g.Contains(Point{X: 32767, Y: 32767}) {
		t.Error("Contains() overflowed for a rectangle past int16 range")
	}
}

func TestGeometryString(t *testing.T) {
	g := Geometry{X: -5, Y: 10, Width: 640, Height: 480}
	if got, want := g.String(), "640x480-5+10"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Name: "left", X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, Name: "right", X: 1920, Y: 0, Width: 1280, Height: 1024},
	}

	m, ok := MonitorAt(monitors, Point{X: 2000, Y: 10})
	if !ok || m.Name != "right" {
		t.Errorf("MonitorAt(2000,10) = %v, %v; want right", m, ok)
	}
	if _, ok := MonitorAt(monitors, Point{X: 2000, Y: 1050}); ok {
		t.Error("MonitorAt() found a monitor below the right screen")
	}
}
