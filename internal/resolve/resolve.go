// Package resolve decides which branch a pin tracks and whether the pin
// should advance to the latest revision touching its watched paths.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skaphos/pinkeeper/internal/model"
	"github.com/skaphos/pinkeeper/internal/vcs"
)

// ErrOrphanedRevision marks a pinned revision that no remote branch contains.
// It indicates a corrupt registry and aborts the whole run.
var ErrOrphanedRevision = errors.New("orphaned commit")

// aliasSeparator splits a default-branch alias line such as
// "origin/HEAD -> origin/main".
const aliasSeparator = " -> "

// ResolveBranch picks the tracking branch from the ordered containment list:
// the first entry, with a default-branch alias replaced by its target.
func ResolveBranch(branches []string) (string, error) {
	if len(branches) == 0 {
		return "", ErrOrphanedRevision
	}
	first := strings.TrimSpace(branches[0])
	if strings.Contains(first, aliasSeparator) {
		return first[strings.LastIndex(first, " ")+1:], nil
	}
	return first, nil
}

// Advancer resolves records against a RemoteQuery inside a prepared
// workspace directory.
type Advancer struct {
	Query vcs.RemoteQuery
}

// Branch discovers the tracking branch of rec in dir.
func (a *Advancer) Branch(ctx context.Context, dir string, rec model.RepoRecord) (string, error) {
	branches, err := a.Query.BranchesContaining(ctx, dir, rec.Version)
	if err != nil {
		return "", fmt.Errorf("%s: %w", rec.Name, err)
	}
	branch, err := ResolveBranch(branches)
	if err != nil {
		return "", fmt.Errorf("%w %s", err, rec.Name)
	}
	return branch, nil
}

// Advance computes the outcome for rec on branch.
//
// HEAD-tracking records always advance to the candidate. Otherwise the pin
// stays put when the candidate equals it or is already one of its ancestors.
func (a *Advancer) Advance(ctx context.Context, dir string, rec model.RepoRecord, branch string) (model.Outcome, error) {
	candidate, err := a.Query.LatestRevisionTouching(ctx, dir, branch, rec.WatchedPaths)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("%s: %w", rec.Name, err)
	}
	if rec.TracksHead() {
		return model.Advanced(rec, branch, candidate), nil
	}
	if candidate == rec.Version {
		return model.Unchanged(rec, branch), nil
	}
	behind, err := a.Query.IsAncestor(ctx, dir, candidate, rec.Version)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("%s: %w", rec.Name, err)
	}
	if behind {
		return model.Unchanged(rec, branch), nil
	}
	return model.Advanced(rec, branch, candidate), nil
}

// Resolve runs branch discovery and advancement for rec in dir.
func (a *Advancer) Resolve(ctx context.Context, dir string, rec model.RepoRecord) (model.Outcome, error) {
	branch, err := a.Branch(ctx, dir, rec)
	if err != nil {
		return model.Outcome{}, err
	}
	return a.Advance(ctx, dir, rec, branch)
}
