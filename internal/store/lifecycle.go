package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sidstack/sidstack/internal/identity"
	"github.com/sidstack/sidstack/internal/ports"
	"github.com/sidstack/sidstack/internal/state"
)

// ErrNotFound is wrapped by every operation handed an unknown project
// or worktree id.
var ErrNotFound = errors.New("not found")

// OpenProject registers the project rooted at folderPath and makes it
// active. Opening a path whose project (by remote, else by path) is
// already known registers the path as a new worktree of that project
// instead of duplicating it; opening an already-registered path only
// switches to it.
func (s *Store) OpenProject(ctx context.Context, folderPath string) (*state.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remote := s.disc.RemoteURL(ctx, folderPath)
	idSource := remote
	if idSource == "" {
		idSource = folderPath
	}
	projectID := identity.Hash(idSource)

	if p := s.st.Project(projectID); p != nil {
		if p.WorktreeByPath(folderPath) == nil {
			s.addWorktreeLocked(ctx, p, folderPath)
		}
		s.st.ActiveProjectID = projectID
		if wt := p.WorktreeByPath(folderPath); wt != nil {
			p.ActiveWorktreeID = wt.ID
			wt.LastActive = time.Now()
		}
		s.repairInvariants()
		s.markDirty()
		return cloneProject(p), nil
	}

	p := &state.Project{
		ID:                projectID,
		Name:              identity.ProjectName(remote, folderPath),
		GitRemote:         remote,
		SharedContextPath: s.contextPath(projectID),
	}

	for _, info := range s.disc.Worktrees(ctx, folderPath) {
		wt := s.newWorktreeLocked(p, info.Path, info.Branch)
		p.Worktrees = append(p.Worktrees, wt)
	}

	if wt := p.WorktreeByPath(folderPath); wt != nil {
		p.ActiveWorktreeID = wt.ID
		wt.LastActive = time.Now()
	}

	s.st.Projects = append(s.st.Projects, p)
	s.st.ActiveProjectID = projectID
	s.repairInvariants()
	s.markDirty()

	s.publish(ProjectOpened{
		ProjectID:   p.ID,
		Name:        p.Name,
		GitRemote:   p.GitRemote,
		ContextPath: p.SharedContextPath,
	})

	return cloneProject(p), nil
}

// CloseProject removes a project. If it was active, the list's new last
// element becomes active, or nothing when the list is empty.
func (s *Store) CloseProject(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.st.Projects {
		if p.ID == projectID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}

	s.st.Projects = append(s.st.Projects[:idx], s.st.Projects[idx+1:]...)
	if s.st.ActiveProjectID == projectID {
		s.st.ActiveProjectID = ""
		if n := len(s.st.Projects); n > 0 {
			s.st.ActiveProjectID = s.st.Projects[n-1].ID
		}
	}

	s.repairInvariants()
	s.markDirty()
	return nil
}

// SwitchProject makes the given project active.
func (s *Store) SwitchProject(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.Project(projectID) == nil {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}

	s.st.ActiveProjectID = projectID
	s.repairInvariants()
	s.markDirty()
	return nil
}

// SwitchWorktree activates a worktree by id. Worktree ids are only
// unique within a project, so the owning project is found by a linear
// scan and the first match wins; it becomes the active project too.
func (s *Store) SwitchWorktree(worktreeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.st.Projects {
		wt := p.Worktree(worktreeID)
		if wt == nil {
			continue
		}

		s.st.ActiveProjectID = p.ID
		p.ActiveWorktreeID = wt.ID
		wt.LastActive = time.Now()
		s.repairInvariants()
		s.markDirty()
		return nil
	}

	return fmt.Errorf("worktree %q: %w", worktreeID, ErrNotFound)
}

// AddWorktree registers worktreePath under a project, resolving its
// branch (folder name when git cannot tell) and allocating ports.
// Duplicate-path prevention is OpenProject's responsibility, not done
// here.
func (s *Store) AddWorktree(ctx context.Context, projectID, worktreePath string) (*state.Worktree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.st.Project(projectID)
	if p == nil {
		return nil, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}

	wt := s.addWorktreeLocked(ctx, p, worktreePath)
	s.repairInvariants()
	s.markDirty()

	out := *wt
	return &out, nil
}

// RemoveWorktree removes a worktree. If it was active, the project's
// first remaining worktree becomes active, or none remain.
func (s *Store) RemoveWorktree(projectID, worktreeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.st.Project(projectID)
	if p == nil {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}

	idx := -1
	for i, wt := range p.Worktrees {
		if wt.ID == worktreeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("worktree %q: %w", worktreeID, ErrNotFound)
	}

	// Null out the allocation record before dropping the worktree; the
	// allocator's used set is recomputed from the live list, so removal
	// alone already frees the ports.
	p.Worktrees[idx].Ports = state.PortAllocation{}
	p.Worktrees = append(p.Worktrees[:idx], p.Worktrees[idx+1:]...)

	if p.ActiveWorktreeID == worktreeID {
		p.ActiveWorktreeID = ""
		if len(p.Worktrees) > 0 {
			p.ActiveWorktreeID = p.Worktrees[0].ID
		}
	}

	s.repairInvariants()
	s.markDirty()
	return nil
}

// ReleasePorts resets all three port fields of a worktree to zero
// without removing it.
func (s *Store) ReleasePorts(projectID, worktreeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.st.Project(projectID)
	if p == nil {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	wt := p.Worktree(worktreeID)
	if wt == nil {
		return fmt.Errorf("worktree %q: %w", worktreeID, ErrNotFound)
	}

	wt.Ports = state.PortAllocation{}
	s.markDirty()
	return nil
}

// ActiveProject returns a copy of the active project, or nil.
func (s *Store) ActiveProject() *state.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.st.Project(s.st.ActiveProjectID)
	if p == nil {
		return nil
	}
	return cloneProject(p)
}

// ActiveWorktree returns a copy of the active project's active
// worktree, or nil.
func (s *Store) ActiveWorktree() *state.Worktree {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.st.Project(s.st.ActiveProjectID)
	if p == nil {
		return nil
	}
	wt := p.Worktree(p.ActiveWorktreeID)
	if wt == nil {
		return nil
	}
	out := *wt
	return &out
}

// Projects returns a deep copy of the full project list.
func (s *Store) Projects() []*state.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Clone().Projects
}

// ActiveProjectID returns the active project pointer.
func (s *Store) ActiveProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ActiveProjectID
}

// addWorktreeLocked resolves the branch for worktreePath, derives an id
// and allocates ports, then appends the worktree to p. Caller must hold
// the write lock.
func (s *Store) addWorktreeLocked(ctx context.Context, p *state.Project, worktreePath string) *state.Worktree {
	branch := s.disc.BranchOrFolder(ctx, worktreePath)
	wt := s.newWorktreeLocked(p, worktreePath, branch)
	p.Worktrees = append(p.Worktrees, wt)
	return wt
}

// newWorktreeLocked builds a worktree entry with a disambiguated id and
// a fresh port allocation. p may not yet be part of the project list.
func (s *Store) newWorktreeLocked(p *state.Project, worktreePath, branch string) *state.Worktree {
	id := s.worktreeIDLocked(p, branch)

	used := ports.UsedPorts(s.st.Projects)
	if s.st.Project(p.ID) == nil {
		// The project being built is not in the list yet; count its
		// worktrees too so siblings don't collide.
		for class, set := range ports.UsedPorts([]*state.Project{p}) {
			for port := range set {
				used[class][port] = true
			}
		}
	}

	alloc, err := s.alloc.Allocate(used)
	if err != nil {
		// Degrade: exhausted classes stay 0, callers surface that as
		// "service unavailable" for the worktree.
		s.logger.Warn("port allocation degraded", "worktree", id, "error", err)
	}

	return &state.Worktree{
		ID:     id,
		Path:   worktreePath,
		Branch: branch,
		Ports:  alloc,
	}
}

// worktreeIDLocked slugs the branch name and suffixes it when two
// differently-named branches normalize to the same id within p.
func (s *Store) worktreeIDLocked(p *state.Project, branch string) string {
	base := identity.WorktreeID(branch)
	if p.Worktree(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if p.Worktree(candidate) == nil {
			return candidate
		}
	}
}

// repairInvariants re-validates the active pointers after a mutation:
// a dangling project pointer falls back to the last project (or none),
// a dangling worktree pointer falls back to the first worktree (or
// none), and IsActive flags mirror the pointers so at most one worktree
// per project carries the flag. Caller must hold the write lock.
func (s *Store) repairInvariants() {
	if s.st.Project(s.st.ActiveProjectID) == nil {
		s.st.ActiveProjectID = ""
		if n := len(s.st.Projects); n > 0 {
			s.st.ActiveProjectID = s.st.Projects[n-1].ID
		}
	}

	for _, p := range s.st.Projects {
		if p.Worktree(p.ActiveWorktreeID) == nil {
			p.ActiveWorktreeID = ""
			if len(p.Worktrees) > 0 {
				p.ActiveWorktreeID = p.Worktrees[0].ID
			}
		}
		for _, wt := range p.Worktrees {
			wt.IsActive = wt.ID == p.ActiveWorktreeID
		}
	}
}

func cloneProject(p *state.Project) *state.Project {
	cp := *p
	cp.Worktrees = make([]*state.Worktree, 0, len(p.Worktrees))
	for _, wt := range p.Worktrees {
		cwt := *wt
		cp.Worktrees = append(cp.Worktrees, &cwt)
	}
	return &cp
}
