package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_Stable(t *testing.T) {
	first := Hash("git@github.com:org/widget.git")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Hash("git@github.com:org/widget.git"))
	}
	assert.Len(t, first, 16)
}

func TestHash_DistinctInputs(t *testing.T) {
	assert.NotEqual(t, Hash("/repo/a"), Hash("/repo/b"))
	assert.NotEqual(t, Hash(""), Hash("/repo/a"))
}

func TestWorktreeID(t *testing.T) {
	tests := []struct {
		branch string
		want   string
	}{
		{"main", "main"},
		{"feature/ABC-123", "feature-abc-123"},
		{"Fix/Weird Branch!", "fix-weird-branch-"},
		{"release/v1.2.3", "release-v1-2-3"},
		{"HEAD", "head"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WorktreeID(tt.branch), "branch %q", tt.branch)
	}
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		remote string
		path   string
		want   string
	}{
		{"git@github.com:org/widget.git", "/repo/a", "widget"},
		{"https://github.com/org/widget.git", "/repo/a", "widget"},
		{"https://github.com/org/widget", "/repo/a", "widget"},
		{"", "/home/me/projects/gadget", "gadget"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProjectName(tt.remote, tt.path))
	}
}
