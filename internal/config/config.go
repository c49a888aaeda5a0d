// Package config provides configuration management for bibliograph.
// Settings come from an optional YAML file, overridden by environment
// variables with the BIBLIOGRAPH_ prefix, with sensible defaults for
// everything else.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for a bibliograph run.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Prefixes  PrefixesConfig  `yaml:"prefixes"`
	Inference InferenceConfig `yaml:"inference"`
	Log       LogConfig       `yaml:"log"`
}

// StorageConfig contains snapshot persistence configuration.
type StorageConfig struct {
	Engine string `yaml:"engine"` // Storage engine: sqlite, postgres (default: sqlite)
	DSN    string `yaml:"dsn"`    // Data source name (default: ./data/bibliograph.db)
}

// PrefixesConfig contains the sheet-prefix vocabulary of the catalog.
type PrefixesConfig struct {
	Recognized   []string `yaml:"recognized"`    // Recognized sheet prefixes (default: PL)
	DefaultSheet string   `yaml:"default_sheet"` // Sheet assumed for bare numeric tokens (default: PL)
	Namespace    string   `yaml:"namespace"`     // Canonical-ID prefix for recognized sheets (default: NF)
	OtherNS      string   `yaml:"other_ns"`      // Canonical-ID prefix for unrecognized sheets (default: OTH)
}

// InferenceConfig contains traversal limits for the inference passes.
type InferenceConfig struct {
	ClosureLimit int `yaml:"closure_limit"` // Visit ceiling for closure queries (default: 100000)
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // Log level: debug, info, warn, error (default: info)
	Format string `yaml:"format"` // Log format: text, json (default: text)
}

// LoadConfig loads configuration from defaults and BIBLIOGRAPH_*
// environment variables.
func LoadConfig() (*Config, error) {
	cfg := buildBaseConfig()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromFile loads configuration from a YAML file, then applies
// environment variable overrides on top. A missing file is an error;
// pass "" to skip the file entirely.
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Engine {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown storage engine %q", c.Storage.Engine)
	}
	if c.Prefixes.DefaultSheet == "" {
		return fmt.Errorf("config: default sheet must not be empty")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Engine: "sqlite",
			DSN:    "./data/bibliograph.db",
		},
		Prefixes: PrefixesConfig{
			Recognized:   []string{"PL"},
			DefaultSheet: "PL",
			Namespace:    "NF",
			OtherNS:      "OTH",
		},
		Inference: InferenceConfig{
			ClosureLimit: 100000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// buildBaseConfig constructs a Config from defaults and environment
// variables only.
func buildBaseConfig() *Config {
	cfg := defaultConfig()
	applyEnv(cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	cfg.Storage.Engine = getEnv("BIBLIOGRAPH_STORAGE_ENGINE", cfg.Storage.Engine)
	cfg.Storage.DSN = getEnv("BIBLIOGRAPH_STORAGE_DSN", cfg.Storage.DSN)
	cfg.Prefixes.Recognized = getEnvList("BIBLIOGRAPH_PREFIXES", cfg.Prefixes.Recognized)
	cfg.Prefixes.DefaultSheet = getEnv("BIBLIOGRAPH_DEFAULT_SHEET", cfg.Prefixes.DefaultSheet)
	cfg.Prefixes.Namespace = getEnv("BIBLIOGRAPH_NAMESPACE", cfg.Prefixes.Namespace)
	cfg.Prefixes.OtherNS = getEnv("BIBLIOGRAPH_OTHER_NAMESPACE", cfg.Prefixes.OtherNS)
	cfg.Inference.ClosureLimit = getEnvInt("BIBLIOGRAPH_CLOSURE_LIMIT", cfg.Inference.ClosureLimit)
	cfg.Log.Level = getEnv("BIBLIOGRAPH_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("BIBLIOGRAPH_LOG_FORMAT", cfg.Log.Format)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the variable exists but cannot be parsed, the default is used.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable or returns
// a default value.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
