package gitcmd

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// FakeRunner is a scripted Runner for tests. Responses are keyed by
// "dir: argv" first, then by argv alone; unmatched commands fail, which
// models git being unavailable. Safe for concurrent use.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []string
}

// NewFakeRunner creates an empty fake that fails every command.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]string)}
}

// Stub registers stdout for the given argv in any directory.
func (f *FakeRunner) Stub(out string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[strings.Join(args, " ")] = out
}

// StubDir registers stdout for the given argv when run in dir.
func (f *FakeRunner) StubDir(dir, out string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[dir+": "+strings.Join(args, " ")] = out
}

// Run replays the scripted response for the argv, recording the call.
func (f *FakeRunner) Run(_ context.Context, dir string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.Join(args, " ")
	f.calls = append(f.calls, dir+": "+key)
	if out, ok := f.responses[dir+": "+key]; ok {
		return out, nil
	}
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", errors.New("gitcmd: no stub for " + key)
}

// CallCount returns how many commands have been run.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Calls returns a copy of the recorded "dir: argv" strings.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}
