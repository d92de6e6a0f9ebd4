// SPDX-License-Identifier: MIT
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// run executes hg in dir and returns its trimmed stdout. A cancelled or
// expired ctx is wrapped into the error so callers can tell a timeout from
// a remote failure.
func (h *HgAdapter) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, h.bin(), args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		line := "hg " + strings.Join(args, " ")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w: %w", line, ctxErr, err)
		}
		if errText := strings.TrimSpace(stderr.String()); errText != "" {
			return "", fmt.Errorf("%s: %s: %w", line, errText, err)
		}
		return "", fmt.Errorf("%s: %w", line, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// revsetString quotes s as a revset string literal so revisions and branch
// names are looked up as symbols, never parsed as revset syntax.
func revsetString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
