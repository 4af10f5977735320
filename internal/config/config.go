package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WindowConfig declares one window kind in the shell's catalog. Order in the
// config file is the catalog order, which drives cascade placement.
type WindowConfig struct {
	Kind      string `yaml:"kind"`
	Title     string `yaml:"title"`
	StartOpen bool   `yaml:"start_open,omitempty"`
}

// LayoutConfig holds the geometry constants, in terminal cells.
type LayoutConfig struct {
	Margin         int `yaml:"margin"`
	TitleBarHeight int `yaml:"title_bar_height"`
	PaddingX       int `yaml:"padding_x"`
	PaddingY       int `yaml:"padding_y"`
	MinWidth       int `yaml:"min_width"`
	MinHeight      int `yaml:"min_height"`
}

// NodeConfig points the shell at a hive node's HTTP API.
type NodeConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoggingConfig configures the shell's file logger.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: hivedesk.log in the runtime dir)
	File string `yaml:"file,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	Windows      []WindowConfig `yaml:"windows"`
	Layout       LayoutConfig   `yaml:"layout"`
	Node         NodeConfig     `yaml:"node"`
	Logging      LoggingConfig  `yaml:"logging,omitempty"`
	Theme        string         `yaml:"theme"`
	ColorProfile string         `yaml:"color_profile"`
	Socket       string         `yaml:"socket,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Windows: []WindowConfig{
			{Kind: "wallet", Title: "Wallet", StartOpen: true},
			{Kind: "scrolls", Title: "Scrolls"},
			{Kind: "patterns", Title: "Patterns"},
			{Kind: "settings", Title: "Settings"},
		},
		Layout: LayoutConfig{
			Margin:         2,
			TitleBarHeight: 1,
			PaddingX:       4,
			PaddingY:       2,
			MinWidth:       36,
			MinHeight:      10,
		},
		Node: NodeConfig{
			URL:            "http://127.0.0.1:8080",
			TimeoutSeconds: 5,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Theme:        "mocha",
		ColorProfile: "auto",
	}
}

// Title returns the configured title for a window kind, falling back to the
// kind itself.
func (c *Config) Title(kind string) string {
	for _, w := range c.Windows {
		if w.Kind == kind {
			return w.Title
		}
	}
	return kind
}

// Kinds returns the catalog order of window kinds.
func (c *Config) Kinds() []string {
	out := make([]string, 0, len(c.Windows))
	for _, w := range c.Windows {
		out = append(out, w.Kind)
	}
	return out
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if len(c.Windows) == 0 {
		return &ValidationError{Path: "windows", Err: fmt.Errorf("windows must not be empty")}
	}
	seen := make(map[string]bool)
	for i, w := range c.Windows {
		path := fmt.Sprintf("windows[%d]", i)
		if strings.TrimSpace(w.Kind) == "" {
			return &ValidationError{Path: path + ".kind", Err: fmt.Errorf("kind is required")}
		}
		if seen[w.Kind] {
			return &ValidationError{Path: path + ".kind", Err: fmt.Errorf("duplicate kind %q", w.Kind)}
		}
		seen[w.Kind] = true
		if strings.TrimSpace(w.Title) == "" {
			return &ValidationError{Path: path + ".title", Err: fmt.Errorf("title is required")}
		}
	}

	if c.Layout.Margin < 0 {
		return &ValidationError{Path: "layout.margin", Err: fmt.Errorf("margin must be >= 0")}
	}
	if c.Layout.TitleBarHeight < 1 {
		return &ValidationError{Path: "layout.title_bar_height", Err: fmt.Errorf("title_bar_height must be >= 1")}
	}
	if c.Layout.PaddingX < 0 || c.Layout.PaddingY < 0 {
		return &ValidationError{Path: "layout", Err: fmt.Errorf("padding values must be >= 0")}
	}
	if c.Layout.MinWidth < 10 {
		return &ValidationError{Path: "layout.min_width", Err: fmt.Errorf("min_width must be >= 10")}
	}
	if c.Layout.MinHeight < 3 {
		return &ValidationError{Path: "layout.min_height", Err: fmt.Errorf("min_height must be >= 3")}
	}

	if strings.TrimSpace(c.Node.URL) == "" {
		return &ValidationError{Path: "node.url", Err: fmt.Errorf("node url is required")}
	}
	u, err := url.Parse(c.Node.URL)
	if err != nil {
		return &ValidationError{Path: "node.url", Err: fmt.Errorf("invalid url: %w", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Path: "node.url", Err: fmt.Errorf("node url must be http or https")}
	}
	if c.Node.TimeoutSeconds <= 0 {
		return &ValidationError{Path: "node.timeout_seconds", Err: fmt.Errorf("timeout_seconds must be > 0")}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}

	switch c.Theme {
	case "latte", "frappe", "macchiato", "mocha":
	default:
		return &ValidationError{Path: "theme", Err: fmt.Errorf("theme must be one of: latte, frappe, macchiato, mocha")}
	}

	switch c.ColorProfile {
	case "auto", "ascii", "ansi", "ansi256", "truecolor":
	default:
		return &ValidationError{Path: "color_profile", Err: fmt.Errorf("color_profile must be one of: auto, ascii, ansi, ansi256, truecolor")}
	}

	return nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to the given path.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
