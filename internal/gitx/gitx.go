// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns
	// trimmed stdout. Failures carry stderr text and wrap the process error.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("git %s: %w: %w", strings.Join(args, " "), ctxErr, err)
		}
		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), errText, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ExitCode extracts the process exit status from err. It returns -1 when err
// carries no exit status and 0 for a nil error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}

// Clone materializes url into dir without checking out a working tree.
// dir must already exist and be empty.
func Clone(ctx context.Context, r Runner, url, dir string) error {
	if _, err := r.Run(ctx, dir, "clone", "--no-checkout", "-q", url, "."); err != nil {
		return fmt.Errorf("%w: clone %s: %w", ErrRemoteUnavailable, url, err)
	}
	return nil
}

// BranchesContaining lists remote-tracking branches whose history contains
// rev, in the order git reports them.
func BranchesContaining(ctx context.Context, r Runner, dir, rev string) ([]string, error) {
	out, err := r.Run(ctx, dir, "branch", "-r", "--contains", rev)
	if err != nil {
		return nil, fmt.Errorf("%w: branches containing %s: %w", ErrRemoteUnavailable, rev, err)
	}
	return ParseBranchList(out), nil
}

// LatestRevisionTouching returns the abbreviated hash of the most recent
// commit on branch that modified any of paths. With no paths it returns the
// branch tip.
func LatestRevisionTouching(ctx context.Context, r Runner, dir, branch string, paths []string) (string, error) {
	args := append([]string{"log", "-1", "--format=%h", branch, "--"}, paths...)
	out, err := r.Run(ctx, dir, args...)
	if err != nil {
		return "", fmt.Errorf("%w: log %s: %w", ErrRemoteUnavailable, branch, err)
	}
	rev := strings.TrimSpace(out)
	if rev == "" {
		return "", fmt.Errorf("%w: %s -- %s", ErrNoMatchingRevision, branch, strings.Join(paths, " "))
	}
	return rev, nil
}

// IsAncestor reports whether candidate is a (non-strict) ancestor of
// reference. Exit status 1 from git means "not an ancestor"; any other
// failure is returned as an error.
func IsAncestor(ctx context.Context, r Runner, dir, candidate, reference string) (bool, error) {
	_, err := r.Run(ctx, dir, "merge-base", "--is-ancestor", candidate, reference)
	switch {
	case err == nil:
		return true, nil
	case ExitCode(err) == 1:
		return false, nil
	default:
		return false, fmt.Errorf("%w: merge-base %s %s: %w", ErrRemoteUnavailable, candidate, reference, err)
	}
}

// ParseBranchList splits `git branch -r` output into trimmed, non-empty lines.
// Alias lines such as "origin/HEAD -> origin/main" are kept verbatim.
func ParseBranchList(output string) []string {
	var branches []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		branches = append(branches, line)
	}
	return branches
}
