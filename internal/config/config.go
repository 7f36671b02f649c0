package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// CollectionDedupe overrides detection settings for one collection.
type CollectionDedupe struct {
	Threshold float64 `toml:"threshold"`
}

type DedupeConfig struct {
	// Threshold is the text-similarity cutoff shared by all collections
	// unless overridden below. Must be in (0, 1].
	Threshold   float64                     `toml:"threshold"`
	Collections map[string]CollectionDedupe `toml:"collections"`
}

type AuditConfig struct {
	RetentionDays int `toml:"retention_days"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Dedupe   DedupeConfig   `toml:"dedupe"`
	Audit    AuditConfig    `toml:"audit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Path: "data/mdm.db"},
		Dedupe:   DedupeConfig{Threshold: 0.85},
		Audit:    AuditConfig{RetentionDays: 365},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Dedupe.Threshold <= 0 || c.Dedupe.Threshold > 1 {
		return fmt.Errorf("dedupe threshold must be in (0,1], got %v", c.Dedupe.Threshold)
	}
	for name, col := range c.Dedupe.Collections {
		if col.Threshold <= 0 || col.Threshold > 1 {
			return fmt.Errorf("dedupe threshold for %s must be in (0,1], got %v", name, col.Threshold)
		}
	}
	return nil
}

// ThresholdOverrides flattens per-collection overrides for the detector.
func (c *Config) ThresholdOverrides() map[string]float64 {
	if len(c.Dedupe.Collections) == 0 {
		return nil
	}
	overrides := make(map[string]float64, len(c.Dedupe.Collections))
	for name, col := range c.Dedupe.Collections {
		overrides[name] = col.Threshold
	}
	return overrides
}
