// Package config loads YAML-driven defaults for the tile data store's
// batch tools: indexer presets, the water-body filter threshold, default
// boat sizes to fit-check, and whether saves gzip by default.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the dump/build tools.
// It holds only batch-job defaults; the core store packages never read
// it directly and take every parameter as a constructor argument.
type Config struct {
	Indexer     IndexerConfig     `yaml:"indexer"`
	WaterFilter WaterFilterConfig `yaml:"water_filter"`
	BoatFit     BoatFitConfig     `yaml:"boat_fit"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// IndexerConfig configures the standard coordinate bounds (spec §3).
type IndexerConfig struct {
	XBase     int `yaml:"x_base"`
	XBits     int `yaml:"x_bits"`
	YBase     int `yaml:"y_base"`
	YBits     int `yaml:"y_bits"`
	PlaneBase int `yaml:"plane_base"`
	PlaneBits int `yaml:"plane_bits"`
}

// WaterFilterConfig configures the water-body flood-fill filter (C8).
type WaterFilterConfig struct {
	MinBodySize int `yaml:"min_body_size"`
}

// BoatFitConfig configures the boat-fit processor (C7).
type BoatFitConfig struct {
	Sizes []int `yaml:"sizes"`
}

// PersistenceConfig configures default save behavior (C6).
type PersistenceConfig struct {
	Format   string `yaml:"format"`
	UseGzip  bool   `yaml:"use_gzip"`
	MaxShard int    `yaml:"max_shard_bytes"`
}

// Default returns the built-in configuration matching spec.md's standard
// presets and defaults.
func Default() *Config {
	return &Config{
		Indexer: IndexerConfig{
			XBase: 480, XBits: 12,
			YBase: 0, YBits: 14,
			PlaneBase: 0, PlaneBits: 2,
		},
		WaterFilter: WaterFilterConfig{MinBodySize: 5000},
		BoatFit:     BoatFitConfig{Sizes: []int{1, 2, 3}},
		Persistence: PersistenceConfig{Format: "roaring", UseGzip: false},
	}
}

// GetMinBodySize returns the configured threshold, falling back to the
// TILE_WATER_MIN_BODY environment variable, then the spec default.
func (c *WaterFilterConfig) GetMinBodySize() int {
	return getIntWithEnvFallback(c.MinBodySize, "TILE_WATER_MIN_BODY", 5000)
}

func getIntWithEnvFallback(configured int, envVar string, defaultValue int) int {
	if configured > 0 {
		return configured
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if parsed, err := strconv.Atoi(envVal); err == nil && parsed > 0 {
			return parsed
		}
	}

	return defaultValue
}

// Load reads a YAML configuration file. If path is "", it tries the
// TILE_CONFIG environment variable; if that is also empty, it returns the
// built-in Default() rather than an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TILE_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
