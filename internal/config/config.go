package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/pxruler/internal/x11"
)

const (
	DefaultPointerPollMS = 2000
	DefaultTagProperty   = x11.DefaultTagProperty
	DefaultOverlayColor  = Color(0xff3b30)
	DefaultRecentChanges = 64
	maxPointerPollMS     = 60000
	maxOverlayThickness  = 64
	maxRecentChanges     = 4096
	defaultLoggingLevel  = "info"
	defaultLoggingFormat = "auto"
	defaultOverlayThick  = 1
)

// Config is the effective pxruler configuration.
type Config struct {
	// Display overrides $DISPLAY when set.
	Display       string        `yaml:"display"`
	PointerPollMS int           `yaml:"pointer_poll_ms"`
	TagProperty   string        `yaml:"tag_property"`
	Logging       LoggingConfig `yaml:"logging"`
	Overlay       OverlayConfig `yaml:"overlay"`
	MCP           MCPConfig     `yaml:"mcp"`
}

// LoggingConfig selects the log level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // auto|text|pretty
}

// OverlayConfig styles the crosshair overlay.
type OverlayConfig struct {
	Color     Color `yaml:"color"`
	Thickness int   `yaml:"thickness"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	RecentChanges int `yaml:"recent_changes"`
}

// Color is a 24-bit RGB value. It reads 0xRRGGBB, #RRGGBB or a plain
// integer and writes 0xRRGGBB.
type Color uint32

func (c Color) String() string {
	return fmt.Sprintf("0x%06x", uint32(c))
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a scalar", node.Line)
	}
	value := strings.TrimSpace(node.Value)
	if strings.HasPrefix(value, "#") {
		value = "0x" + value[1:]
	}
	v, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return fmt.Errorf("line %d: invalid color %q", node.Line, node.Value)
	}
	*c = Color(v)
	return nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		PointerPollMS: DefaultPointerPollMS,
		TagProperty:   DefaultTagProperty,
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		Overlay: OverlayConfig{
			Color:     DefaultOverlayColor,
			Thickness: defaultOverlayThick,
		},
		MCP: MCPConfig{
			RecentChanges: DefaultRecentChanges,
		},
	}
}

// PollTimeout returns pointer_poll_ms as a duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PointerPollMS) * time.Millisecond
}

// SlogLevel maps logging.level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ValidationError names the offending key and, when known, where the value
// came from.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (c *Config) Validate() error {
	if c.PointerPollMS <= 0 || c.PointerPollMS > maxPointerPollMS {
		return &ValidationError{Path: "pointer_poll_ms", Err: fmt.Errorf("pointer_poll_ms must be between 1 and %d", maxPointerPollMS)}
	}
	if strings.TrimSpace(c.TagProperty) == "" {
		return &ValidationError{Path: "tag_property", Err: fmt.Errorf("tag_property is required")}
	}
	if strings.ContainsAny(c.TagProperty, " \t\r\n") {
		return &ValidationError{Path: "tag_property", Err: fmt.Errorf("tag_property must not contain whitespace")}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "auto", "text", "pretty":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("logging.format must be one of: auto, text, pretty")}
	}
	if c.Overlay.Color > 0xffffff {
		return &ValidationError{Path: "overlay.color", Err: fmt.Errorf("overlay.color must be a 24-bit RGB value")}
	}
	if c.Overlay.Thickness < 1 || c.Overlay.Thickness > maxOverlayThickness {
		return &ValidationError{Path: "overlay.thickness", Err: fmt.Errorf("overlay.thickness must be between 1 and %d", maxOverlayThickness)}
	}
	if c.MCP.RecentChanges < 1 || c.MCP.RecentChanges > maxRecentChanges {
		return &ValidationError{Path: "mcp.recent_changes", Err: fmt.Errorf("mcp.recent_changes must be between 1 and %d", maxRecentChanges)}
	}
	return nil
}
