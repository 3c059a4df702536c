// Package store is the stateful core of sidstack: it owns the list of
// known projects with their worktrees and ports, funnels every mutation
// through a single writer, and persists the state record to durable
// key-value storage through a debounced background save worker.
package store

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sidstack/sidstack/internal/discover"
	"github.com/sidstack/sidstack/internal/kv"
	"github.com/sidstack/sidstack/internal/ports"
	"github.com/sidstack/sidstack/internal/state"
)

// ProjectOpened is published after a new project is committed. The
// shared-context subscriber reacts to it; its failures never reach the
// store.
type ProjectOpened struct {
	ProjectID   string
	Name        string
	GitRemote   string
	ContextPath string
}

// SaveError records a persistence failure after retries were exhausted.
type SaveError struct {
	Err       error
	Timestamp time.Time
	Retries   int
}

// Store is the lifecycle manager. All reads and writes to project state
// go through it; the mutex is held across the external git invocations
// of a mutating operation so concurrent opens cannot observe the same
// free port.
type Store struct {
	mu    sync.RWMutex
	st    *state.State
	disc  *discover.Discoverer
	alloc *ports.Allocator

	storage kv.Store
	logger  *slog.Logger

	// Save queue management
	dirty      bool
	saveChan   chan struct{}
	closeChan  chan struct{}
	closedChan chan struct{}
	saveErr    *SaveError

	debounceTime time.Duration
	maxRetries   int
	disableSave  bool

	notify      func(ProjectOpened)
	notifyWG    sync.WaitGroup
	contextPath func(projectID string) string
}

// Option is a functional option for configuring the Store.
type Option func(*Store)

// WithDebounceTime sets the debounce duration for saves.
func WithDebounceTime(d time.Duration) Option {
	return func(s *Store) { s.debounceTime = d }
}

// WithMaxRetries sets the maximum number of save retries.
func WithMaxRetries(n int) Option {
	return func(s *Store) { s.maxRetries = n }
}

// WithDisableSave disables persistence (for testing).
func WithDisableSave() Option {
	return func(s *Store) { s.disableSave = true }
}

// WithNotify registers the ProjectOpened subscriber.
func WithNotify(fn func(ProjectOpened)) Option {
	return func(s *Store) { s.notify = fn }
}

// WithContextPath sets how a project's shared-context path is derived
// from its id.
func WithContextPath(fn func(projectID string) string) Option {
	return func(s *Store) { s.contextPath = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store, loading prior state from storage. A missing or
// corrupt state record means starting fresh, never an error.
func New(storage kv.Store, disc *discover.Discoverer, alloc *ports.Allocator, opts ...Option) *Store {
	s := &Store{
		st:           &state.State{},
		disc:         disc,
		alloc:        alloc,
		storage:      storage,
		logger:       slog.Default(),
		saveChan:     make(chan struct{}, 1),
		closeChan:    make(chan struct{}),
		closedChan:   make(chan struct{}),
		debounceTime: 100 * time.Millisecond,
		maxRetries:   3,
		contextPath:  func(string) string { return "" },
	}

	for _, opt := range opts {
		opt(s)
	}

	s.loadState()

	go s.saveWorker()
	return s
}

// loadState restores the persisted {projects, activeProjectId} record.
func (s *Store) loadState() {
	raw, ok, err := s.storage.Get(kv.KeyState)
	if err != nil {
		s.logger.Warn("failed to read persisted state, starting fresh", "error", err)
		return
	}
	if !ok {
		return
	}

	var st state.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Warn("persisted state is corrupt, starting fresh", "error", err)
		return
	}
	s.st = &st
	s.repairInvariants()
}

// saveWorker handles debounced saves in the background.
func (s *Store) saveWorker() {
	defer close(s.closedChan)

	for {
		select {
		case <-s.saveChan:
			// Debounce: wait for more mutations to coalesce.
			time.Sleep(s.debounceTime)
			s.performSave()

		case <-s.closeChan:
			// Flush any pending saves before closing.
			s.performSave()
			return
		}
	}
}

// performSave serializes the state and writes it with retry logic.
func (s *Store) performSave() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	if s.disableSave {
		s.dirty = false
		s.mu.Unlock()
		return
	}
	data, err := json.Marshal(s.st)
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("failed to serialize state", "error", err)
		return
	}

	var lastErr error
	for i := 0; i <= s.maxRetries; i++ {
		if err := s.storage.Set(kv.KeyState, string(data)); err != nil {
			lastErr = err
			time.Sleep(time.Duration(i+1) * 50 * time.Millisecond)
			continue
		}

		s.mu.Lock()
		s.dirty = false
		s.saveErr = nil
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.saveErr = &SaveError{Err: lastErr, Timestamp: time.Now(), Retries: s.maxRetries}
	s.mu.Unlock()
	s.logger.Error("failed to persist state", "error", lastErr, "retries", s.maxRetries)
}

// markDirty flags unsaved changes and signals the save worker. Caller
// must hold the write lock.
func (s *Store) markDirty() {
	s.dirty = true
	select {
	case s.saveChan <- struct{}{}:
	default:
		// Already has a pending save signal.
	}
}

// Close shuts down the store and flushes pending saves. Returns whether
// a pending save was flushed.
func (s *Store) Close() (hadPending bool, err error) {
	s.mu.RLock()
	hadPending = s.dirty
	s.mu.RUnlock()

	close(s.closeChan)
	<-s.closedChan
	s.notifyWG.Wait()

	s.mu.RLock()
	if s.saveErr != nil {
		err = s.saveErr.Err
	}
	s.mu.RUnlock()

	return hadPending, err
}

// ForceSave immediately persists the state, bypassing the debounce
// queue.
func (s *Store) ForceSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disableSave {
		s.dirty = false
		return nil
	}
	data, err := json.Marshal(s.st)
	if err != nil {
		return err
	}
	if err := s.storage.Set(kv.KeyState, string(data)); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// HasPendingSaves reports unsaved changes.
func (s *Store) HasPendingSaves() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// LastSaveError returns the last persistence failure, if any.
func (s *Store) LastSaveError() *SaveError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveErr
}

// publish dispatches an event to the subscriber without blocking the
// operation that produced it. Close waits for in-flight dispatches.
func (s *Store) publish(event ProjectOpened) {
	if s.notify == nil {
		return
	}
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		s.notify(event)
	}()
}
