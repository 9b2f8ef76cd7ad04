package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.DBPath != def.DBPath || cfg.RenderDebounce != def.RenderDebounce {
		t.Errorf("missing file did not yield defaults: %+v", cfg)
	}
	if len(cfg.Layout.Sizes) == 0 {
		t.Error("default layout has no size table")
	}
}

func TestLoadPartialFileFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	content := `
db_path: /tmp/custom.db
render_debounce: 100ms
layout:
  level_height: 200
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q, want the file's value", cfg.DBPath)
	}
	if cfg.RenderDebounce != 100*time.Millisecond {
		t.Errorf("RenderDebounce = %v, want 100ms", cfg.RenderDebounce)
	}
	if cfg.Layout.LevelHeight != 200 {
		t.Errorf("LevelHeight = %v, want 200", cfg.Layout.LevelHeight)
	}

	// Everything the file omitted falls back to defaults.
	def := Default()
	if cfg.FlushInterval != def.FlushInterval {
		t.Errorf("FlushInterval = %v, want default %v", cfg.FlushInterval, def.FlushInterval)
	}
	if cfg.Layout.SiblingGap != def.Layout.SiblingGap {
		t.Errorf("SiblingGap = %v, want default %v", cfg.Layout.SiblingGap, def.Layout.SiblingGap)
	}
	if len(cfg.Layout.Sizes) != len(def.Layout.Sizes) {
		t.Errorf("size table not defaulted: %+v", cfg.Layout.Sizes)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	if err := os.WriteFile(path, []byte("db_path: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml accepted")
	}
}
