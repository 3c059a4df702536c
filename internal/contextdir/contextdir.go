// Package contextdir provisions the shared context directory that every
// project gets for cross-worktree notes and metadata.
package contextdir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sidstack/sidstack/internal/store"
)

const notesTemplate = `# %s

Shared notes for this project. Visible from every worktree.
`

// Manifest is written to context.yaml inside each context directory so
// the directory can be traced back to its project.
type Manifest struct {
	ProjectID string    `yaml:"projectId"`
	Name      string    `yaml:"name"`
	GitRemote string    `yaml:"gitRemote,omitempty"`
	CreatedAt time.Time `yaml:"createdAt"`
}

// Provisioner creates per-project context directories. Failures are
// logged, never surfaced: a missing context directory must not block
// opening a project.
type Provisioner struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{logger: logger}
}

// HandleProjectOpened satisfies the store's notify hook.
func (p *Provisioner) HandleProjectOpened(event store.ProjectOpened) {
	if event.ContextPath == "" {
		return
	}
	if err := p.provision(event); err != nil {
		p.logger.Warn("failed to provision context directory",
			"projectId", event.ProjectID,
			"path", event.ContextPath,
			"error", err)
	}
}

func (p *Provisioner) provision(event store.ProjectOpened) error {
	if err := os.MkdirAll(event.ContextPath, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	manifestPath := filepath.Join(event.ContextPath, "context.yaml")
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		manifest := Manifest{
			ProjectID: event.ProjectID,
			Name:      event.Name,
			GitRemote: event.GitRemote,
			CreatedAt: time.Now(),
		}
		data, err := yaml.Marshal(manifest)
		if err != nil {
			return fmt.Errorf("failed to marshal manifest: %w", err)
		}
		if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	notesPath := filepath.Join(event.ContextPath, "notes.md")
	if _, err := os.Stat(notesPath); os.IsNotExist(err) {
		notes := fmt.Sprintf(notesTemplate, event.Name)
		if err := os.WriteFile(notesPath, []byte(notes), 0o644); err != nil {
			return fmt.Errorf("failed to write notes: %w", err)
		}
	}

	return nil
}
