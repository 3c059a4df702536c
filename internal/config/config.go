// Package config loads sidstack's own settings: where state lives, the
// reserved port ranges per class, and the git command timeout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sidstack/sidstack/internal/ports"
)

const (
	dataDirName  = ".sidstack"
	configFile   = "sidstack.yaml"
	databaseFile = "sidstack.db"

	// EnvDataDir overrides the data directory; used by tests to stay
	// out of the real home directory.
	EnvDataDir = "SIDSTACK_DATA_DIR"
)

// Duration wraps time.Duration so the config file can say "10s".
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the tunable settings.
type Config struct {
	Ports      map[ports.Class]ports.Range `yaml:"ports"`
	GitTimeout Duration                    `yaml:"gitTimeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Ports:      ports.DefaultRanges(),
		GitTimeout: Duration(10 * time.Second),
	}
}

// DataDir returns the sidstack data directory (~/.sidstack unless
// overridden via SIDSTACK_DATA_DIR).
func DataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dataDirName), nil
}

// DatabasePath returns the location of the durable key-value database.
func DatabasePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, databaseFile), nil
}

// ContextDir returns the shared-context root for a project id.
func ContextDir(dataDir, projectID string) string {
	return filepath.Join(dataDir, "context", projectID)
}

// Load reads the config file from the data directory. A missing file
// yields the defaults; a corrupt one is an error. Partial files only
// override the fields they set.
func Load() (*Config, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if overlay.Ports != nil {
		cfg.Ports = overlay.Ports
	}
	if overlay.GitTimeout > 0 {
		cfg.GitTimeout = overlay.GitTimeout
	}

	return cfg, nil
}

// Save writes the config file, creating the data directory if needed.
func Save(cfg *Config) error {
	dir, err := DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
