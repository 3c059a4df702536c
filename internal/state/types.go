// Package state defines the persisted data model of the lifecycle
// manager: projects, their worktrees, and port allocations.
package state

import "time"

// PortAllocation holds one port per class for a worktree. Zero means
// unallocated (range exhausted or explicitly released).
type PortAllocation struct {
	Dev     int `json:"dev"`
	API     int `json:"api"`
	Preview int `json:"preview"`
}

// Worktree is one working directory checked out against a branch of a
// project.
type Worktree struct {
	ID         string         `json:"id"`
	Path       string         `json:"path"`
	Branch     string         `json:"branch"`
	Ports      PortAllocation `json:"ports"`
	IsActive   bool           `json:"isActive"`
	LastActive time.Time      `json:"lastActive"`
}

// Project is a tracked repository, identified by its git remote when
// known and by its root path otherwise.
type Project struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	GitRemote         string      `json:"gitRemote"`
	Worktrees         []*Worktree `json:"worktrees"`
	ActiveWorktreeID  string      `json:"activeWorktreeId"`
	SharedContextPath string      `json:"sharedContextPath"`
}

// Worktree returns the worktree with the given id, or nil.
func (p *Project) Worktree(id string) *Worktree {
	for _, wt := range p.Worktrees {
		if wt.ID == id {
			return wt
		}
	}
	return nil
}

// WorktreeByPath returns the worktree with the given path, or nil.
func (p *Project) WorktreeByPath(path string) *Worktree {
	for _, wt := range p.Worktrees {
		if wt.Path == path {
			return wt
		}
	}
	return nil
}

// State is the persisted record: the full project list plus the active
// project pointer.
type State struct {
	Projects        []*Project `json:"projects"`
	ActiveProjectID string     `json:"activeProjectId"`
}

// Project returns the project with the given id, or nil.
func (s *State) Project(id string) *Project {
	for _, p := range s.Projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Clone returns a deep copy of the state. Callers outside the store
// only ever see clones.
func (s *State) Clone() *State {
	out := &State{ActiveProjectID: s.ActiveProjectID}
	if s.Projects != nil {
		out.Projects = make([]*Project, 0, len(s.Projects))
	}
	for _, p := range s.Projects {
		cp := *p
		cp.Worktrees = make([]*Worktree, 0, len(p.Worktrees))
		for _, wt := range p.Worktrees {
			cwt := *wt
			cp.Worktrees = append(cp.Worktrees, &cwt)
		}
		out.Projects = append(out.Projects, &cp)
	}
	return out
}
