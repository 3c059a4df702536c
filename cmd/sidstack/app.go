package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sidstack/sidstack/internal/config"
	"github.com/sidstack/sidstack/internal/contextdir"
	"github.com/sidstack/sidstack/internal/discover"
	"github.com/sidstack/sidstack/internal/gitcmd"
	"github.com/sidstack/sidstack/internal/kv"
	"github.com/sidstack/sidstack/internal/ports"
	"github.com/sidstack/sidstack/internal/store"
)

// openStore wires the full stack: config, sqlite-backed storage, the
// git runner, the port allocator and the context-directory provisioner.
// The returned cleanup flushes pending saves and closes the database.
func openStore() (*store.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, nil, err
	}
	storage, err := kv.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	alloc, err := ports.NewAllocator(cfg.Ports)
	if err != nil {
		_ = storage.Close()
		return nil, nil, fmt.Errorf("invalid port configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	provisioner := contextdir.New(logger)

	s := store.New(storage,
		discover.New(gitcmd.NewExecRunner(time.Duration(cfg.GitTimeout))),
		alloc,
		store.WithLogger(logger),
		store.WithContextPath(func(projectID string) string {
			return config.ContextDir(dataDir, projectID)
		}),
		store.WithNotify(provisioner.HandleProjectOpened),
	)

	cleanup := func() {
		if _, err := s.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save state: %v\n", err)
		}
		_ = storage.Close()
	}
	return s, cleanup, nil
}
