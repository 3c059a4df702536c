package state

import (
	"encoding/json"

	version "github.com/hashicorp/go-version"
)

// LegacyWorkspaces is the single-workspace-list format the multi-project
// model replaced. It is read once during migration and never written.
type LegacyWorkspaces struct {
	Version    string   `json:"version"`
	Workspaces []string `json:"workspaces"`
}

// maxLegacyVersion is the newest legacy schema the migrator understands.
var maxLegacyVersion = version.Must(version.NewVersion("2.0"))

// ParseLegacy decodes a legacy workspace blob defensively: malformed
// JSON, an unparsable version, or a version at or beyond 2.0 all yield
// nil rather than an error, since migration treats "unreadable" and
// "absent" the same way.
func ParseLegacy(raw string) *LegacyWorkspaces {
	if raw == "" {
		return nil
	}
	var legacy LegacyWorkspaces
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return nil
	}
	if legacy.Version != "" {
		v, err := version.NewVersion(legacy.Version)
		if err != nil || v.GreaterThanOrEqual(maxLegacyVersion) {
			return nil
		}
	}
	return &legacy
}
