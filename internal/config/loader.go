package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at a config file
const ConfigFileEnv = "TM_CONFIG"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the config file named by TM_CONFIG, if any
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	return l.load(os.Getenv(ConfigFileEnv))
}

// LoadWithOverrides loads configuration and applies command line overrides.
// A ConfigFile override takes precedence over TM_CONFIG.
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	path := os.Getenv(ConfigFileEnv)
	if overrides != nil && overrides.ConfigFile != nil && *overrides.ConfigFile != "" {
		path = *overrides.ConfigFile
	}

	config, err := l.load(path)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) load(path string) (*Config, error) {
	if path != "" {
		if err := LoadFile(l.config, path); err != nil {
			return nil, err
		}
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadFile decodes a YAML (.yaml, .yml) or TOML (.toml) file over cfg.
// Keys absent from the file leave the existing values untouched.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
	default:
		return &ConfigError{Field: "config_file", Message: fmt.Sprintf("unsupported config file extension %q (use .yaml, .yml or .toml)", ext)}
	}
	return nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	ConfigFile *string

	// Storage overrides
	StorageDir      *string
	StorageFilename *string
	StorageBackend  *string

	// Validation overrides
	AllowPastDue *bool

	// Server overrides
	ServerAddr *string

	// Logging overrides
	LogLevel  *string
	LogFormat *string

	// Application overrides
	Timeout *time.Duration
	Verbose *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	// Storage overrides
	if overrides.StorageDir != nil {
		config.Storage.Dir = *overrides.StorageDir
	}
	if overrides.StorageFilename != nil {
		config.Storage.Filename = *overrides.StorageFilename
	}
	if overrides.StorageBackend != nil {
		config.Storage.Backend = strings.ToLower(*overrides.StorageBackend)
	}

	// Validation overrides
	if overrides.AllowPastDue != nil {
		config.Validation.AllowPastDue = *overrides.AllowPastDue
	}

	// Server overrides
	if overrides.ServerAddr != nil {
		config.Server.Addr = *overrides.ServerAddr
	}

	// Logging overrides
	if overrides.LogLevel != nil {
		config.Logging.Level = strings.ToLower(*overrides.LogLevel)
	}
	if overrides.LogFormat != nil {
		config.Logging.Format = strings.ToLower(*overrides.LogFormat)
	}

	// Application overrides
	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
