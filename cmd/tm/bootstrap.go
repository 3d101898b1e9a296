package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"task-manager/internal/api"
	"task-manager/internal/cli"
	"task-manager/internal/config"
	"task-manager/internal/logging"
	"task-manager/internal/manager"
)

// bootstrap creates the store selected by TM_ENV and the configuration, loads
// the task list and wires the API. Logs go to stderr so stdout stays clean for
// exports.
func bootstrap(ctx context.Context, cfg *config.Config) (*cli.Runtime, error) {
	logger := logging.New(cfg.Logging, os.Stderr)
	if cfg.Application.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	env := config.GetEnvironment()
	store, err := config.NewStoreFactory(env, cfg).CreateStore()
	if err != nil {
		return nil, fmt.Errorf("error creating store: %w", err)
	}
	logger.Debug("store ready", "env", env, "backend", cfg.Storage.Backend, "path", cfg.GetStoragePath())

	m := manager.New(store, logger)
	if err := m.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load tasks from %s: %w", cfg.GetStoragePath(), err)
	}

	return &cli.Runtime{
		API:    api.NewWithConfig(m, cfg),
		Logger: logger,
		Close:  store.Close,
	}, nil
}
