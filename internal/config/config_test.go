package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidstack/sidstack/internal/ports"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ports.DefaultRanges(), cfg.Ports)
	assert.Equal(t, Duration(10*time.Second), cfg.GitTimeout)
}

func TestLoad_PartialOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)

	data := []byte("gitTimeout: 3s\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sidstack.yaml"), data, 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Duration(3*time.Second), cfg.GitTimeout)
	// Port ranges untouched by the overlay.
	assert.Equal(t, ports.DefaultRanges(), cfg.Ports)
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sidstack.yaml"), []byte("{not yaml"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())

	cfg := Default()
	cfg.GitTimeout = Duration(5 * time.Second)
	cfg.Ports[ports.ClassDev] = ports.Range{Start: 4000, End: 4099}
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Duration(5*time.Second), loaded.GitTimeout)
	assert.Equal(t, ports.Range{Start: 4000, End: 4099}, loaded.Ports[ports.ClassDev])
}

func TestDataDir_EnvOverride(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/sidstack-test")

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sidstack-test", dir)
}

func TestContextDir(t *testing.T) {
	assert.Equal(t, "/data/context/abc123", ContextDir("/data", "abc123"))
}
