// Package workspace provides isolated, self-cleaning directories for
// per-repository remote queries.
package workspace

import (
	"fmt"
	"os"
	"strings"
)

// With creates a fresh temporary directory for the repository name, calls fn
// with it, and removes it afterwards on every exit path, including a panic
// in fn. Base may be empty to use the system temp dir.
func With(base, name string, fn func(dir string) error) (err error) {
	dir, err := os.MkdirTemp(base, "pinkeeper-"+prefix(name)+"-")
	if err != nil {
		return fmt.Errorf("create workspace for %s: %w", name, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = fmt.Errorf("remove workspace for %s: %w", name, rmErr)
		}
	}()
	return fn(dir)
}

// prefix turns a repository name into a filesystem-safe fragment.
func prefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "repo"
	}
	return b.String()
}
