package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// DefaultTagProperty marks this application's own overlay windows.
const DefaultTagProperty = "_PXRULER_GRAPHIC_WINDOW"

// markerStore is the server state the Tagger reads and writes.
type markerStore interface {
	SetMarker(win xproto.Window, property string) error
	// GetMarker returns the raw 8-bit property value.
	GetMarker(win xproto.Window, property string) ([]byte, error)
	IsRoot(win xproto.Window) bool
}

// serverMarkers implements markerStore with live property requests.
type serverMarkers struct {
	conn *Connection
}

var _ markerStore = serverMarkers{}

func (s serverMarkers) SetMarker(win xproto.Window, property string) error {
	return xprop.ChangeProp(s.conn.XUtil, win, 8, property, "CARDINAL", []byte{1})
}

func (s serverMarkers) GetMarker(win xproto.Window, property string) ([]byte, error) {
	reply, err := xprop.GetProperty(s.conn.XUtil, win, property)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, nil
	}
	return reply.Value, nil
}

func (s serverMarkers) IsRoot(win xproto.Window) bool {
	return s.conn.IsRoot(win)
}

// Tagger writes and reads the overlay marker property.
type Tagger struct {
	store    markerStore
	property string

	mu     sync.Mutex
	tagged map[xproto.Window]bool
}

// NewTagger creates a Tagger using property, or DefaultTagProperty.
func NewTagger(conn *Connection, property string) *Tagger {
	return newTagger(serverMarkers{conn: conn}, property)
}

func newTagger(store markerStore, property string) *Tagger {
	if property == "" {
		property = DefaultTagProperty
	}
	return &Tagger{
		store:    store,
		property: property,
		tagged:   make(map[xproto.Window]bool),
	}
}

// Property returns the marker property name.
func (t *Tagger) Property() string { return t.property }

// Tag sets the marker to 1 on win. Repeated calls for the same window do
// not touch the server again.
func (t *Tagger) Tag(win xproto.Window) error {
	if win == 0 {
		return fmt.Errorf("cannot tag the null window")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tagged[win] {
		return nil
	}
	if err := t.store.SetMarker(win, t.property); err != nil {
		return fmt.Errorf("failed to tag window %#x: %w", win, err)
	}
	t.tagged[win] = true
	return nil
}

// WindowCreated is the creation hook for windows this application makes.
// Only top-level windows, whose parent is absent or a root, are tagged.
func (t *Tagger) WindowCreated(win, parent xproto.Window) error {
	if parent != 0 && !t.store.IsRoot(parent) {
		return nil
	}
	return t.Tag(win)
}

// IsTagged reads the marker. Any failure counts as untagged.
func (t *Tagger) IsTagged(window uint32) bool {
	if window == 0 {
		return false
	}
	value, err := t.store.GetMarker(xproto.Window(window), t.property)
	if err != nil || len(value) == 0 {
		return false
	}
	return value[0] == 1
}
