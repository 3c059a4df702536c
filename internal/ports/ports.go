// Package ports assigns network ports to worktrees from fixed,
// non-overlapping ranges, one range per port class.
package ports

import (
	"errors"
	"fmt"

	"github.com/sidstack/sidstack/internal/state"
)

// Class is a category of port with its own reserved range.
type Class string

const (
	ClassDev     Class = "dev"
	ClassAPI     Class = "api"
	ClassPreview Class = "preview"
)

// Classes lists every class in allocation order.
var Classes = []Class{ClassDev, ClassAPI, ClassPreview}

// ErrRangeExhausted is returned (wrapped, per class) when a range has no
// free port left. The affected class is still reported as 0 in the
// allocation so callers can degrade instead of aborting.
var ErrRangeExhausted = errors.New("port range exhausted")

// Range is an inclusive port interval.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Allocator scans class ranges for the first free port. It holds no pool
// state of its own: the caller supplies the set of ports currently in
// use, recomputed from the live project list on every call.
type Allocator struct {
	ranges map[Class]Range
}

// DefaultRanges are the reserved intervals per class.
func DefaultRanges() map[Class]Range {
	return map[Class]Range{
		ClassDev:     {Start: 3000, End: 3099},
		ClassAPI:     {Start: 8000, End: 8099},
		ClassPreview: {Start: 5000, End: 5099},
	}
}

// NewAllocator validates the ranges and builds an allocator. Ranges must
// be non-empty, well-ordered, and mutually disjoint.
func NewAllocator(ranges map[Class]Range) (*Allocator, error) {
	for _, class := range Classes {
		r, ok := ranges[class]
		if !ok {
			return nil, fmt.Errorf("missing range for class %q", class)
		}
		if r.Start <= 0 || r.End < r.Start {
			return nil, fmt.Errorf("invalid range %d-%d for class %q", r.Start, r.End, class)
		}
	}
	for i, a := range Classes {
		for _, b := range Classes[i+1:] {
			ra, rb := ranges[a], ranges[b]
			if ra.Start <= rb.End && rb.Start <= ra.End {
				return nil, fmt.Errorf("ranges for %q and %q overlap", a, b)
			}
		}
	}
	return &Allocator{ranges: ranges}, nil
}

// Range returns the configured interval for a class.
func (a *Allocator) Range(class Class) Range {
	return a.ranges[class]
}

// Allocate picks the first free port per class, scanning each range in
// ascending order against the used set. An exhausted class yields 0 for
// that class and contributes an ErrRangeExhausted to the joined error;
// the other classes are still allocated.
func (a *Allocator) Allocate(used map[Class]map[int]bool) (state.PortAllocation, error) {
	var alloc state.PortAllocation
	var errs []error

	for _, class := range Classes {
		port := a.firstFree(class, used[class])
		if port == 0 {
			errs = append(errs, fmt.Errorf("class %q: %w", class, ErrRangeExhausted))
		}
		switch class {
		case ClassDev:
			alloc.Dev = port
		case ClassAPI:
			alloc.API = port
		case ClassPreview:
			alloc.Preview = port
		}
	}

	return alloc, errors.Join(errs...)
}

func (a *Allocator) firstFree(class Class, used map[int]bool) int {
	r := a.ranges[class]
	for port := r.Start; port <= r.End; port++ {
		if !used[port] {
			return port
		}
	}
	return 0
}

// UsedPorts computes the per-class set of non-zero ports held by every
// worktree of every project.
func UsedPorts(projects []*state.Project) map[Class]map[int]bool {
	used := map[Class]map[int]bool{
		ClassDev:     {},
		ClassAPI:     {},
		ClassPreview: {},
	}
	for _, p := range projects {
		for _, wt := range p.Worktrees {
			if wt.Ports.Dev != 0 {
				used[ClassDev][wt.Ports.Dev] = true
			}
			if wt.Ports.API != 0 {
				used[ClassAPI][wt.Ports.API] = true
			}
			if wt.Ports.Preview != 0 {
				used[ClassPreview][wt.Ports.Preview] = true
			}
		}
	}
	return used
}
