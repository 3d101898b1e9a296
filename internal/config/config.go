package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Default task list filenames per backend
const (
	DefaultJSONFilename   = "tasks.json"
	DefaultSQLiteFilename = "tasks.db"
)

// Config holds all configuration options for the task manager
type Config struct {
	Storage     StorageConfig     `yaml:"storage" toml:"storage"`
	Validation  ValidationConfig  `yaml:"validation" toml:"validation"`
	Display     DisplayConfig     `yaml:"display" toml:"display"`
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
	Application ApplicationConfig `yaml:"application" toml:"application"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	Dir             string `yaml:"dir" toml:"dir" env:"TM_STORAGE_DIR"`
	Filename        string `yaml:"filename" toml:"filename" env:"TM_STORAGE_FILENAME"`
	Backend         string `yaml:"backend" toml:"backend" env:"TM_STORAGE_BACKEND"`
	FilePermissions uint32 `yaml:"file_permissions" toml:"file_permissions" env:"TM_STORAGE_FILE_PERMISSIONS"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TaskNameMinLength int  `yaml:"task_name_min_length" toml:"task_name_min_length" env:"TM_VALIDATION_TASK_NAME_MIN"`
	TaskNameMaxLength int  `yaml:"task_name_max_length" toml:"task_name_max_length" env:"TM_VALIDATION_TASK_NAME_MAX"`
	AllowPastDue      bool `yaml:"allow_past_due" toml:"allow_past_due" env:"TM_VALIDATION_ALLOW_PAST_DUE"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	DateFormat string `yaml:"date_format" toml:"date_format" env:"TM_DISPLAY_DATE_FORMAT"`
}

// ServerConfig holds web front end configuration
type ServerConfig struct {
	Addr         string        `yaml:"addr" toml:"addr" env:"TM_SERVER_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout" env:"TM_SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout" env:"TM_SERVER_WRITE_TIMEOUT"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"TM_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"TM_LOG_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" toml:"timeout" env:"TM_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" toml:"verbose" env:"TM_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir:             ".",
			Filename:        DefaultJSONFilename,
			Backend:         BackendJSON,
			FilePermissions: 0644,
		},
		Validation: ValidationConfig{
			TaskNameMinLength: 1,
			TaskNameMaxLength: 255,
			AllowPastDue:      false,
		},
		Display: DisplayConfig{
			DateFormat: "2006-01-02",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8501",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Application: ApplicationConfig{
			Timeout: 30 * time.Second,
			Verbose: false,
		},
	}
}

// GetStoragePath returns the full path to the persisted task list
func (c *Config) GetStoragePath() string {
	return filepath.Join(c.Storage.Dir, c.StorageFilename())
}

// StorageFilename returns the task list filename. The sqlite backend left on
// the JSON default uses tasks.db so it never opens a JSON list as a database.
func (c *Config) StorageFilename() string {
	if c.Storage.Backend == BackendSQLite && c.Storage.Filename == DefaultJSONFilename {
		return DefaultSQLiteFilename
	}
	return c.Storage.Filename
}

// GetFileMode returns the permissions used when the task file is created
func (c *Config) GetFileMode() os.FileMode {
	return os.FileMode(c.Storage.FilePermissions)
}

// LoadFromEnvironment loads configuration from environment variables.
// Values that do not parse are ignored and the previous value is kept.
func (c *Config) LoadFromEnvironment() error {
	// Storage configuration
	if dir := os.Getenv("TM_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if filename := os.Getenv("TM_STORAGE_FILENAME"); filename != "" {
		c.Storage.Filename = filename
	}
	if backend := os.Getenv("TM_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}
	if perms := os.Getenv("TM_STORAGE_FILE_PERMISSIONS"); perms != "" {
		c.Storage.FilePermissions = ParseUint32WithFallback(perms, 8, c.Storage.FilePermissions)
	}

	// Validation configuration
	if minLen := os.Getenv("TM_VALIDATION_TASK_NAME_MIN"); minLen != "" {
		c.Validation.TaskNameMinLength = ParseIntWithFallback(minLen, c.Validation.TaskNameMinLength)
	}
	if maxLen := os.Getenv("TM_VALIDATION_TASK_NAME_MAX"); maxLen != "" {
		c.Validation.TaskNameMaxLength = ParseIntWithFallback(maxLen, c.Validation.TaskNameMaxLength)
	}
	if allow := os.Getenv("TM_VALIDATION_ALLOW_PAST_DUE"); allow != "" {
		c.Validation.AllowPastDue = ParseBoolWithFallback(allow, c.Validation.AllowPastDue)
	}

	// Display configuration
	if format := os.Getenv("TM_DISPLAY_DATE_FORMAT"); format != "" {
		c.Display.DateFormat = format
	}

	// Server configuration
	if addr := os.Getenv("TM_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if timeout := os.Getenv("TM_SERVER_READ_TIMEOUT"); timeout != "" {
		c.Server.ReadTimeout = ParseDurationWithFallback(timeout, c.Server.ReadTimeout)
	}
	if timeout := os.Getenv("TM_SERVER_WRITE_TIMEOUT"); timeout != "" {
		c.Server.WriteTimeout = ParseDurationWithFallback(timeout, c.Server.WriteTimeout)
	}

	// Logging configuration
	if level := os.Getenv("TM_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv("TM_LOG_FORMAT"); format != "" {
		c.Logging.Format = strings.ToLower(format)
	}

	// Application configuration
	if timeout := os.Getenv("TM_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TM_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate storage configuration
	if c.Storage.Dir == "" {
		return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
	}
	if c.Storage.Filename == "" {
		return &ConfigError{Field: "storage.filename", Message: "storage filename cannot be empty"}
	}
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return &ConfigError{Field: "storage.backend", Message: "storage backend must be one of: json, sqlite"}
	}
	if c.Storage.Backend == BackendSQLite && strings.EqualFold(filepath.Ext(c.StorageFilename()), ".json") {
		return &ConfigError{Field: "storage.filename", Message: "the sqlite backend cannot use a .json file"}
	}
	if c.Storage.FilePermissions == 0 || c.Storage.FilePermissions > 0777 {
		return &ConfigError{Field: "storage.file_permissions", Message: "file permissions must be between 0001 and 0777"}
	}

	// Validate validation configuration
	if c.Validation.TaskNameMinLength < 1 {
		return &ConfigError{Field: "validation.task_name_min_length", Message: "task name minimum length must be at least 1"}
	}
	if c.Validation.TaskNameMaxLength < c.Validation.TaskNameMinLength {
		return &ConfigError{Field: "validation.task_name_max_length", Message: "task name maximum length must be greater than minimum length"}
	}

	// Validate display configuration
	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "server address cannot be empty"}
	}
	if c.Server.ReadTimeout <= 0 {
		return &ConfigError{Field: "server.read_timeout", Message: "read timeout must be positive"}
	}
	if c.Server.WriteTimeout <= 0 {
		return &ConfigError{Field: "server.write_timeout", Message: "write timeout must be positive"}
	}

	// Validate logging configuration
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return &ConfigError{Field: "logging.level", Message: "log level must be one of: debug, info, warn, error, fatal"}
	}
	switch c.Logging.Format {
	case "text", "json", "logfmt":
	default:
		return &ConfigError{Field: "logging.format", Message: "log format must be one of: text, json, logfmt"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
