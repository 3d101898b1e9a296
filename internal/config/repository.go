package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"task-manager/internal/repository"
	"task-manager/internal/repository/jsonfile"
	"task-manager/internal/repository/sqlite"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// EnvironmentEnv names the environment variable selecting the environment
const EnvironmentEnv = "TM_ENV"

// GetEnvironment determines the current environment from TM_ENV
func GetEnvironment() Environment {
	switch strings.ToLower(os.Getenv(EnvironmentEnv)) {
	case "development":
		return Development
	case "testing":
		return Testing
	default:
		// Default to production for safety
		return Production
	}
}

// StoreFactory creates task stores based on environment and configuration
type StoreFactory struct {
	env    Environment
	config *Config
}

// NewStoreFactory creates a new store factory for the given environment
func NewStoreFactory(env Environment, config *Config) *StoreFactory {
	return &StoreFactory{env: env, config: config}
}

// CreateStore creates a store for the current environment
func (f *StoreFactory) CreateStore() (repository.Store, error) {
	switch f.env {
	case Development:
		return f.createDevelopmentStore()
	case Testing:
		return f.createTestingStore()
	default:
		return CreateStore(f.config)
	}
}

// createDevelopmentStore keeps development data next to the binary's
// working directory, away from the configured production file
func (f *StoreFactory) createDevelopmentStore() (repository.Store, error) {
	cfg := *f.config
	filename := cfg.StorageFilename()
	ext := filepath.Ext(filename)
	cfg.Storage.Dir = "."
	cfg.Storage.Filename = strings.TrimSuffix(filename, ext) + ".dev" + ext

	store, err := CreateStore(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize development store: %w", err)
	}
	return store, nil
}

// createTestingStore uses an in-memory SQLite database
func (f *StoreFactory) createTestingStore() (repository.Store, error) {
	store, err := CreateTestStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize testing store: %w", err)
	}
	return store, nil
}

// CreateStore creates the store selected by storage.backend
func CreateStore(config *Config) (repository.Store, error) {
	path := config.GetStoragePath()

	switch config.Storage.Backend {
	case BackendSQLite:
		store, err := sqlite.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store, nil
	case BackendJSON, "":
		store, err := jsonfile.New(path, jsonfile.WithFileMode(config.GetFileMode()))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize task file: %w", err)
		}
		return store, nil
	default:
		return nil, &ConfigError{Field: "storage.backend", Message: fmt.Sprintf("unknown storage backend %q", config.Storage.Backend)}
	}
}

// CreateTestStore creates an in-memory store for testing
func CreateTestStore() (repository.Store, error) {
	store, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return store, nil
}
