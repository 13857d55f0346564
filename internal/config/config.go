package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/v2"
)

// Config represents the complete server configuration
type Config struct {
	Google  GoogleConfig  `koanf:"google" yaml:"google"`
	Sampler SamplerConfig `koanf:"sampler" yaml:"sampler"`
	Cache   CacheConfig   `koanf:"cache" yaml:"cache"`
}

// GoogleConfig holds Google Maps web service settings
type GoogleConfig struct {
	APIKey            string        `koanf:"api_key" yaml:"api_key"`
	RequestsPerSecond float64       `koanf:"requests_per_second" yaml:"requests_per_second"`
	Timeout           time.Duration `koanf:"timeout" yaml:"timeout"`
	Mode              string        `koanf:"mode" yaml:"mode"`
}

// SamplerConfig holds route sampling defaults
type SamplerConfig struct {
	DefaultSpacingMeters float64 `koanf:"default_spacing_meters" yaml:"default_spacing_meters"`
}

// CacheConfig controls how long upstream results are reused
type CacheConfig struct {
	DirectionsTTL   time.Duration `koanf:"directions_ttl" yaml:"directions_ttl"`
	GeocodeTTL      time.Duration `koanf:"geocode_ttl" yaml:"geocode_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval" yaml:"cleanup_interval"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Google: GoogleConfig{
			RequestsPerSecond: 10,
			Timeout:           10 * time.Second,
			Mode:              "driving",
		},
		Sampler: SamplerConfig{
			DefaultSpacingMeters: 500,
		},
		Cache: CacheConfig{
			DirectionsTTL:   time.Hour,
			GeocodeTTL:      24 * time.Hour, // addresses rarely move
			CleanupInterval: 10 * time.Minute,
		},
	}
}

// Load unmarshals the known sections from k over the defaults.
// Configuration is normally prefab.Config (prefab.yaml + PF__ environment variables).
func Load(k *koanf.Koanf) (*Config, error) {
	cfg := DefaultConfig()

	sections := map[string]interface{}{
		"google":  &cfg.Google,
		"sampler": &cfg.Sampler,
		"cache":   &cfg.Cache,
	}
	for path, target := range sections {
		if !k.Exists(path) {
			continue
		}
		if err := k.Unmarshal(path, target); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s section: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	var errs []error
	if c.Google.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("google.requests_per_second must be positive, got %v", c.Google.RequestsPerSecond))
	}
	if c.Google.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("google.timeout must be positive, got %v", c.Google.Timeout))
	}
	if c.Sampler.DefaultSpacingMeters <= 0 {
		errs = append(errs, fmt.Errorf("sampler.default_spacing_meters must be positive, got %v", c.Sampler.DefaultSpacingMeters))
	}
	if c.Cache.CleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("cache.cleanup_interval must be positive, got %v", c.Cache.CleanupInterval))
	}
	return errors.Join(errs...)
}
