// SPDX-License-Identifier: MIT
package vcs

import (
	"fmt"
	"strings"
)

// ParseAdapterSelection normalizes a --vcs / remote.vcs value.
func ParseAdapterSelection(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "":
		return "git", nil
	case "git", "hg":
		return name, nil
	default:
		return "", fmt.Errorf("unsupported vcs %q (supported: git,hg)", raw)
	}
}

// NewForSelection creates the RemoteQuery implementation for a selection.
func NewForSelection(raw string) (RemoteQuery, error) {
	name, err := ParseAdapterSelection(raw)
	if err != nil {
		return nil, err
	}
	if name == "hg" {
		return NewHgAdapter(), nil
	}
	return NewGitAdapter(nil), nil
}
