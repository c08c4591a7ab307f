package robotgateway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads and parses a config file from the given path, layering
// it over DefaultConfig. Supported formats: JSON (.json), YAML (.yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	return &cfg, nil
}

var knownProviders = map[string]bool{"anthropic": true, "openai": true, "bedrock": true}
var knownVendors = map[string]bool{"elevenlabs": true, "cartesia": true}

// ValidateConfig validates a Config for correctness.
func ValidateConfig(cfg Config) error {
	if len(cfg.Chat.Targets) == 0 {
		return fmt.Errorf("at least one chat target is required")
	}
	for _, t := range cfg.Chat.Targets {
		if !knownProviders[t.Provider] {
			return fmt.Errorf("unknown chat provider: %q", t.Provider)
		}
		if t.Model == "" {
			return fmt.Errorf("chat target for %q has no model", t.Provider)
		}
	}

	if cfg.Cache.MaxAge < 0 || cfg.Cache.MaxSize < 0 {
		return fmt.Errorf("cache max_age and max_size must be non-negative")
	}

	for _, v := range cfg.TTS.Vendors {
		if !knownVendors[v] {
			return fmt.Errorf("unknown tts vendor: %q", v)
		}
	}

	if cfg.RateLimit.PerSecond < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must be non-negative")
	}

	switch cfg.Storage.Driver {
	case "", DriverNone, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("postgres storage requires a dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}

	return nil
}
