package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/skaphos/pinkeeper/internal/gitx"
)

// HgAdapter implements RemoteQuery for Mercurial remotes. Named branches
// stand in for git's remote-tracking branches; there is no default-branch
// alias line.
type HgAdapter struct {
	// Bin is the path to the hg binary. Defaults to "hg".
	Bin string
}

func NewHgAdapter() *HgAdapter { return &HgAdapter{} }

func (h *HgAdapter) Name() string { return "hg" }

func (h *HgAdapter) bin() string {
	if h.Bin == "" {
		return "hg"
	}
	return h.Bin
}

func (h *HgAdapter) RemoteURL(baseURL, name string) string {
	return gitx.RemoteURL(baseURL, name)
}

func (h *HgAdapter) Clone(ctx context.Context, url, dir string) error {
	if _, err := h.run(ctx, dir, "clone", "-U", "-q", url, "."); err != nil {
		return fmt.Errorf("%w: clone %s: %w", gitx.ErrRemoteUnavailable, url, err)
	}
	return nil
}

// BranchesContaining lists named branches with a head descending from rev.
func (h *HgAdapter) BranchesContaining(ctx context.Context, dir, rev string) ([]string, error) {
	out, err := h.run(ctx, dir, "log", "-r", "descendants("+revsetString(rev)+") and head()", "--template", "{branch}\n")
	if err != nil {
		return nil, fmt.Errorf("%w: branches containing %s: %w", gitx.ErrRemoteUnavailable, rev, err)
	}
	seen := map[string]struct{}{}
	var branches []string
	for _, branch := range gitx.ParseBranchList(out) {
		if _, ok := seen[branch]; ok {
			continue
		}
		seen[branch] = struct{}{}
		branches = append(branches, branch)
	}
	return branches, nil
}

func (h *HgAdapter) LatestRevisionTouching(ctx context.Context, dir, branch string, paths []string) (string, error) {
	args := []string{"log", "-r", "reverse(ancestors(" + revsetString(branch) + "))", "-l", "1", "--template", "{node|short}", "--"}
	for _, p := range paths {
		args = append(args, "path:"+p)
	}
	out, err := h.run(ctx, dir, args...)
	if err != nil {
		return "", fmt.Errorf("%w: log %s: %w", gitx.ErrRemoteUnavailable, branch, err)
	}
	rev := strings.TrimSpace(out)
	if rev == "" {
		return "", fmt.Errorf("%w: %s -- %s", gitx.ErrNoMatchingRevision, branch, strings.Join(paths, " "))
	}
	return rev, nil
}

// IsAncestor reports whether candidate is in the inclusive ancestry of reference.
func (h *HgAdapter) IsAncestor(ctx context.Context, dir, candidate, reference string) (bool, error) {
	out, err := h.run(ctx, dir, "log", "-r", revsetString(candidate)+" and ancestors("+revsetString(reference)+")", "--template", "{node}\n")
	if err != nil {
		return false, fmt.Errorf("%w: ancestry %s %s: %w", gitx.ErrRemoteUnavailable, candidate, reference, err)
	}
	return strings.TrimSpace(out) != "", nil
}
