// Package identity derives the stable identifiers sidstack uses for
// projects and worktrees. Hashes must stay stable across releases:
// persisted state and shared-context directories are keyed by them.
package identity

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a 16-character hex identifier for an arbitrary string.
// Deterministic and pure; collision-tolerant at the scale of hundreds
// of projects, not cryptographic.
func Hash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// WorktreeID normalizes a branch name into a worktree identifier:
// case-folded, with every non-alphanumeric rune (slashes included)
// mapped to '-'. "feature/ABC-123" becomes "feature-abc-123".
func WorktreeID(branch string) string {
	var b strings.Builder
	b.Grow(len(branch))
	for _, r := range strings.ToLower(branch) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// ProjectName extracts a human-readable label for a project. The last
// path segment of the remote URL wins, with a trailing ".git" stripped;
// without a remote the folder name is used.
func ProjectName(remote, folderPath string) string {
	if remote != "" {
		seg := remote
		if i := strings.LastIndexAny(seg, "/:"); i >= 0 {
			seg = seg[i+1:]
		}
		seg = strings.TrimSuffix(seg, ".git")
		if seg != "" {
			return seg
		}
	}
	return filepath.Base(folderPath)
}
