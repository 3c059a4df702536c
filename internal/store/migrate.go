package store

import (
	"context"
	"fmt"

	"github.com/sidstack/sidstack/internal/kv"
	"github.com/sidstack/sidstack/internal/state"
)

// Migrate replays the legacy single-workspace list through OpenProject,
// once per installation. A set completion flag makes subsequent calls
// immediate no-ops; an absent or unreadable legacy blob skips the
// replay but still sets the flag, so migration is attempted at most
// once regardless of outcome. Returns the number of workspaces
// migrated.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	done, ok, err := s.storage.Get(kv.KeyMigrationDone)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration flag: %w", err)
	}
	if ok && done == "true" {
		return 0, nil
	}

	migrated := 0
	if raw, ok, err := s.storage.Get(kv.KeyLegacy); err != nil {
		s.logger.Warn("failed to read legacy workspaces", "error", err)
	} else if ok {
		if legacy := state.ParseLegacy(raw); legacy != nil {
			for _, path := range legacy.Workspaces {
				if _, err := s.OpenProject(ctx, path); err != nil {
					s.logger.Warn("failed to migrate workspace", "path", path, "error", err)
					continue
				}
				migrated++
			}
		} else {
			s.logger.Warn("legacy workspace blob unreadable, skipping")
		}
	}

	if err := s.storage.Set(kv.KeyMigrationDone, "true"); err != nil {
		return migrated, fmt.Errorf("failed to set migration flag: %w", err)
	}
	return migrated, nil
}
