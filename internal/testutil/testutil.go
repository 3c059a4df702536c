// Package testutil provides isolated environments for integration
// tests. It points the data directory at a throwaway location so tests
// never touch a real ~/.sidstack.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sidstack/sidstack/internal/config"
	"github.com/sidstack/sidstack/internal/kv"
)

// Env is an isolated data directory for one test. The environment
// override is undone automatically when the test finishes.
type Env struct {
	DataDir string

	t *testing.T
}

// NewEnv points SIDSTACK_DATA_DIR at a fresh temporary directory.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	dir := t.TempDir()
	t.Setenv(config.EnvDataDir, dir)
	return &Env{DataDir: dir, t: t}
}

// WriteConfig saves cfg into the isolated data directory.
func (e *Env) WriteConfig(cfg *config.Config) {
	e.t.Helper()
	require.NoError(e.t, config.Save(cfg))
}

// Seed writes a key into the isolated database; used to stage legacy
// blobs or pre-baked state before the code under test opens it.
func (e *Env) Seed(key, value string) {
	e.t.Helper()

	dbPath, err := config.DatabasePath()
	require.NoError(e.t, err)
	storage, err := kv.OpenSQLite(dbPath)
	require.NoError(e.t, err)
	defer func() { require.NoError(e.t, storage.Close()) }()

	require.NoError(e.t, storage.Set(key, value))
}

// ReadKey reads a key back from the isolated database.
func (e *Env) ReadKey(key string) (string, bool) {
	e.t.Helper()

	dbPath, err := config.DatabasePath()
	require.NoError(e.t, err)
	storage, err := kv.OpenSQLite(dbPath)
	require.NoError(e.t, err)
	defer func() { require.NoError(e.t, storage.Close()) }()

	value, ok, err := storage.Get(key)
	require.NoError(e.t, err)
	return value, ok
}
