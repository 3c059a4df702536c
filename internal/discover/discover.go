// Package discover enumerates the git worktrees of a repository and
// resolves its branch and remote, with fallbacks for directories that
// are not repositories at all. It never surfaces git failures to its
// callers.
package discover

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sidstack/sidstack/internal/gitcmd"
)

// DefaultBranch is assumed when the current branch cannot be resolved.
const DefaultBranch = "main"

// DetachedBranch represents a worktree on a detached HEAD.
const DetachedBranch = "HEAD"

// Info is a discovered worktree before any ports are assigned.
type Info struct {
	Path   string
	Branch string
}

// Discoverer resolves worktrees, branches and remotes through a
// command runner.
type Discoverer struct {
	runner gitcmd.Runner
}

// New creates a Discoverer.
func New(runner gitcmd.Runner) *Discoverer {
	return &Discoverer{runner: runner}
}

// Worktrees lists the worktrees of the repository at repoPath. When git
// fails or reports nothing, it falls back to a single synthetic worktree
// rooted at repoPath on the current branch.
func (d *Discoverer) Worktrees(ctx context.Context, repoPath string) []Info {
	out, err := d.runner.Run(ctx, repoPath, "worktree", "list", "--porcelain")
	if err == nil {
		if infos := parsePorcelain(out); len(infos) > 0 {
			return infos
		}
	}
	return []Info{{Path: repoPath, Branch: d.CurrentBranch(ctx, repoPath)}}
}

// CurrentBranch resolves the checked-out branch of dir, defaulting to
// DefaultBranch when git is unavailable or reports nothing.
func (d *Discoverer) CurrentBranch(ctx context.Context, dir string) string {
	out, err := d.runner.Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || out == "" {
		return DefaultBranch
	}
	return out
}

// BranchOrFolder resolves the branch of dir, falling back to the folder
// name rather than DefaultBranch. Used when registering an explicit
// worktree path whose directory name is the better guess.
func (d *Discoverer) BranchOrFolder(ctx context.Context, dir string) string {
	out, err := d.runner.Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || out == "" {
		return filepath.Base(dir)
	}
	return out
}

// RemoteURL resolves the origin remote of the repository at repoPath.
// Absence of a remote, or any git failure, yields an empty string and
// the caller falls back to path-based identity.
func (d *Discoverer) RemoteURL(ctx context.Context, repoPath string) string {
	out, err := d.runner.Run(ctx, repoPath, "config", "--get", "remote.origin.url")
	if err != nil {
		return ""
	}
	return out
}

// parsePorcelain splits `git worktree list --porcelain` output into
// blank-line-separated blocks. Each block has a `worktree <path>` line
// and, unless the HEAD is detached, a `branch refs/heads/<name>` line.
func parsePorcelain(out string) []Info {
	var infos []Info
	var current *Info

	flush := func() {
		if current != nil && current.Path != "" {
			if current.Branch == "" {
				current.Branch = DetachedBranch
			}
			infos = append(infos, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = &Info{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch refs/heads/"):
			if current != nil {
				current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
			}
		}
	}
	flush()

	return infos
}
