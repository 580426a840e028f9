// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice  PracticeConfig  `toml:"practice"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Dataset   *string `toml:"dataset"`
	Deck      *string `toml:"deck"`
	Level     *string `toml:"level"`
	Direction *string `toml:"direction"`
	Mode      *string `toml:"mode"`
	Options   *int    `toml:"options"`
}

// SchedulerConfig maps the item weighting constants.
type SchedulerConfig struct {
	RecencyCap *float64 `toml:"recency-cap"`
	MinElapsed *float64 `toml:"min-elapsed"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
