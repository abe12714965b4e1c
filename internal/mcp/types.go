package mcp

// WindowInfo is a window rectangle in root coordinates.
type WindowInfo struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Rescan the window tree before listing (default: rescan only when windows changed since the last scan)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Supported bool         `json:"supported"`
	Windows   []WindowInfo `json:"windows"`
}

// WindowAtInput is the input for the window_at tool.
type WindowAtInput struct {
	X       int  `json:"x" jsonschema:"Root window X coordinate"`
	Y       int  `json:"y" jsonschema:"Root window Y coordinate"`
	Refresh bool `json:"refresh,omitempty" jsonschema:"Rescan the window tree before the lookup"`
}

// WindowAtOutput is the output for the window_at tool.
type WindowAtOutput struct {
	Found  bool        `json:"found"`
	Window *WindowInfo `json:"window,omitempty"`
}

// RefreshWindowsInput is the input for the refresh_windows tool.
type RefreshWindowsInput struct{}

// RefreshWindowsOutput is the output for the refresh_windows tool.
type RefreshWindowsOutput struct {
	Supported bool `json:"supported"`
	Count     int  `json:"count"`
}

// PointerPositionInput is the input for the pointer_position tool.
type PointerPositionInput struct {
	Live bool `json:"live,omitempty" jsonschema:"Query the server instead of returning the last recorded motion"`
}

// PointerPositionOutput is the output for the pointer_position tool.
type PointerPositionOutput struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Source string `json:"source"` // recorded|queried
	At     string `json:"at"`     // RFC 3339

	// Observing reports whether global motion recording is available.
	Observing bool `json:"observing"`
}

// RecentChangesInput is the input for the recent_window_changes tool.
type RecentChangesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of changes to return, newest first (default: all buffered)"`
}

// WindowChange is one observed window configuration change.
type WindowChange struct {
	WindowID uint32 `json:"window_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	At       string `json:"at"` // RFC 3339
}

// RecentChangesOutput is the output for the recent_window_changes tool.
type RecentChangesOutput struct {
	Observing bool           `json:"observing"`
	Total     uint64         `json:"total"`
	Changes   []WindowChange `json:"changes"`
}

// ListScreensInput is the input for the list_screens tool.
type ListScreensInput struct{}

// ScreenInfo describes one monitor.
type ScreenInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ListScreensOutput is the output for the list_screens tool.
type ListScreensOutput struct {
	Screens []ScreenInfo `json:"screens"`
}
