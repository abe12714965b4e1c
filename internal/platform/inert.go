package platform

import "github.com/1broseidon/pxruler/internal/x11"

type inertPointer struct{}

func (inertPointer) Start()            {}
func (inertPointer) Stop()             {}
func (inertPointer) IsSupported() bool { return false }

type inertWindows struct{}

func (inertWindows) Start()            {}
func (inertWindows) Stop()             {}
func (inertWindows) IsSupported() bool { return false }

type inertFinder struct{}

func (inertFinder) Refresh()                    {}
func (inertFinder) Find(x11.Point) x11.Geometry { return x11.Geometry{} }
func (inertFinder) IsSupported() bool           { return false }
func (inertFinder) Windows() []x11.Geometry     { return nil }

var (
	_ PointerTracker = inertPointer{}
	_ WindowTracker  = inertWindows{}
	_ WindowFinder   = inertFinder{}
)

// Inert returns a bundle that observes nothing and finds nothing.
func Inert() *Tracking {
	return &Tracking{
		Pointer: inertPointer{},
		Windows: inertWindows{},
		Finder:  inertFinder{},
	}
}
