// Package gitcmd wraps git subprocess execution behind a narrow contract
// so discovery and the lifecycle store can be tested without a git binary.
package gitcmd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single git invocation. A command that exceeds
// it is treated the same as one that failed.
const DefaultTimeout = 10 * time.Second

// Runner executes a command in a working directory and returns its
// trimmed stdout. Implementations must treat a non-zero exit and any
// execution error identically.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs git via os/exec with a bounded timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates a runner with the given timeout; zero or
// negative means DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Timeout: timeout}
}

// Run invokes `git <args...>` in dir.
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
