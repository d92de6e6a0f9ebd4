package vcs

import (
	"context"

	"github.com/skaphos/pinkeeper/internal/gitx"
)

// RemoteQuery defines the remote-introspection operations pinkeeper relies
// on. Every call is stateless; dir is the isolated workspace of one
// repository. Git is the default implementation.
type RemoteQuery interface {
	Name() string
	// RemoteURL builds the clone URL for a registry name under baseURL.
	RemoteURL(baseURL, name string) string
	Clone(ctx context.Context, url, dir string) error
	BranchesContaining(ctx context.Context, dir, rev string) ([]string, error)
	LatestRevisionTouching(ctx context.Context, dir, branch string, paths []string) (string, error)
	IsAncestor(ctx context.Context, dir, candidate, reference string) (bool, error)
}

// GitAdapter implements RemoteQuery using the git CLI via gitx.
type GitAdapter struct {
	Runner gitx.Runner
}

func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitAdapter{Runner: runner}
}

func (g *GitAdapter) Name() string { return "git" }

func (g *GitAdapter) RemoteURL(baseURL, name string) string {
	return gitx.RemoteURL(baseURL, name)
}

func (g *GitAdapter) Clone(ctx context.Context, url, dir string) error {
	return gitx.Clone(ctx, g.Runner, url, dir)
}

func (g *GitAdapter) BranchesContaining(ctx context.Context, dir, rev string) ([]string, error) {
	return gitx.BranchesContaining(ctx, g.Runner, dir, rev)
}

func (g *GitAdapter) LatestRevisionTouching(ctx context.Context, dir, branch string, paths []string) (string, error) {
	return gitx.LatestRevisionTouching(ctx, g.Runner, dir, branch, paths)
}

func (g *GitAdapter) IsAncestor(ctx context.Context, dir, candidate, reference string) (bool, error) {
	return gitx.IsAncestor(ctx, g.Runner, dir, candidate, reference)
}
