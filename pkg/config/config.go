// Package config loads the optional arbor.yaml settings file and supplies
// defaults when it is absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Alhassan777/arbor/pkg/layout"
)

// DefaultFileName is the settings file looked up in the working directory.
const DefaultFileName = "arbor.yaml"

// Config holds every user-tunable setting.
type Config struct {
	// DBPath locates the sqlite database holding all trees.
	DBPath string `yaml:"db_path"`
	// SessionPath locates the chat-session JSONL export to sync from.
	// Empty disables session syncing.
	SessionPath string `yaml:"session_path"`

	// RenderDebounce coalesces bursts of structural changes into one
	// scene recompute.
	RenderDebounce time.Duration `yaml:"render_debounce"`
	// FlushInterval batches persistence writes.
	FlushInterval time.Duration `yaml:"flush_interval"`

	Layout layout.Config `yaml:"layout"`
}

// Default returns the standard settings.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DBPath:         filepath.Join(home, ".arbor", "arbor.db"),
		RenderDebounce: 250 * time.Millisecond,
		FlushInterval:  500 * time.Millisecond,
		Layout:         layout.DefaultConfig(),
	}
}

// Load reads settings from path, filling unset fields from Default. A
// missing file is not an error; it just yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults repairs zero values a partial file may have left behind.
func (c *Config) fillDefaults() {
	def := Default()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.RenderDebounce <= 0 {
		c.RenderDebounce = def.RenderDebounce
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = def.FlushInterval
	}
	if c.Layout.LevelHeight <= 0 {
		c.Layout.LevelHeight = def.Layout.LevelHeight
	}
	if c.Layout.SiblingGap <= 0 {
		c.Layout.SiblingGap = def.Layout.SiblingGap
	}
	if c.Layout.PaddingX <= 0 {
		c.Layout.PaddingX = def.Layout.PaddingX
	}
	if c.Layout.PaddingY <= 0 {
		c.Layout.PaddingY = def.Layout.PaddingY
	}
	if len(c.Layout.Sizes) == 0 {
		c.Layout.Sizes = def.Layout.Sizes
	}
}
