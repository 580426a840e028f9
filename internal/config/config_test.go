package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected missing config to be fine, got %v", err)
	}
	if cfg.Practice.Dataset != nil || cfg.Scheduler.RecencyCap != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[practice]
dataset = "tr_ru"
direction = "reverse"
options = 5

[scheduler]
recency-cap = 6.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Dataset == nil || *cfg.Practice.Dataset != "tr_ru" {
		t.Fatalf("unexpected dataset: %v", cfg.Practice.Dataset)
	}
	if cfg.Practice.Options == nil || *cfg.Practice.Options != 5 {
		t.Fatalf("unexpected options: %v", cfg.Practice.Options)
	}
	if cfg.Practice.Mode != nil {
		t.Fatalf("expected unset mode to stay nil")
	}
	if cfg.Scheduler.RecencyCap == nil || *cfg.Scheduler.RecencyCap != 6.5 {
		t.Fatalf("unexpected recency cap: %v", cfg.Scheduler.RecencyCap)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwords = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "lingua", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "lingua", "lingua.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultDeckDir(); got != filepath.Join("/tmp/cfg", "lingua", "decks") {
		t.Fatalf("unexpected deck dir: %s", got)
	}
}
