// SPDX-License-Identifier: MIT
// Package registry holds the ordered set of pinned repositories and decides
// whether a resolution pass changed it.
package registry

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/skaphos/pinkeeper/internal/model"
	"github.com/skaphos/pinkeeper/internal/sortutil"
)

// Registry is the ordered sequence of pinned repositories.
type Registry struct {
	Records []model.RepoRecord `json:"repos" yaml:"repos"`
}

// New copies records into a Registry in their given order.
func New(records []model.RepoRecord) *Registry {
	return &Registry{Records: slices.Clone(records)}
}

// Names returns record names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		names = append(names, rec.Name)
	}
	return names
}

// Find returns the record with the given name, or nil.
func (r *Registry) Find(name string) *model.RepoRecord {
	for i := range r.Records {
		if r.Records[i].Name == name {
			return &r.Records[i]
		}
	}
	return nil
}

// Validate checks that names are present and unique.
func (r *Registry) Validate() error {
	seen := make(map[string]struct{}, len(r.Records))
	for i, rec := range r.Records {
		if strings.TrimSpace(rec.Name) == "" {
			return fmt.Errorf("record %d: empty name", i)
		}
		if strings.TrimSpace(rec.Version) == "" {
			return fmt.Errorf("record %s: empty version", rec.Name)
		}
		if _, ok := seen[rec.Name]; ok {
			return fmt.Errorf("duplicate record %s", rec.Name)
		}
		seen[rec.Name] = struct{}{}
	}
	return nil
}

// Equal compares two record sequences positionally, field by field.
func Equal(a, b []model.RepoRecord) bool {
	return slices.EqualFunc(a, b, func(x, y model.RepoRecord) bool {
		return x.Equal(y)
	})
}

// Diff builds the new registry from outcome records, sorted by name, and
// reports whether it differs from original.
func Diff(original *Registry, outcomes []model.Outcome) (*Registry, bool) {
	records := make([]model.RepoRecord, 0, len(outcomes))
	for _, out := range outcomes {
		records = append(records, out.Record)
	}
	sortutil.SortRecords(records)
	var prev []model.RepoRecord
	if original != nil {
		prev = original.Records
	}
	return &Registry{Records: records}, !Equal(records, prev)
}

// Selector restricts which records a run resolves. Each pattern is an exact
// name or a doublestar glob; an empty Selector selects everything.
type Selector struct {
	patterns []string
}

// NewSelector validates patterns and builds a Selector.
func NewSelector(patterns []string) (Selector, error) {
	var kept []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return Selector{}, fmt.Errorf("invalid selector pattern %q", p)
		}
		kept = append(kept, p)
	}
	return Selector{patterns: kept}, nil
}

// All reports whether the selector matches every record.
func (s Selector) All() bool { return len(s.patterns) == 0 }

// Match reports whether name is selected.
func (s Selector) Match(name string) bool {
	if s.All() {
		return true
	}
	for _, p := range s.patterns {
		if p == name {
			return true
		}
		if ok, err := doublestar.Match(p, path.Clean(name)); err == nil && ok {
			return true
		}
	}
	return false
}

// Unmatched returns patterns that select no record in r, in pattern order.
func (s Selector) Unmatched(r *Registry) []string {
	if r == nil {
		return slices.Clone(s.patterns)
	}
	names := r.Names()
	var missing []string
	for _, p := range s.patterns {
		one := Selector{patterns: []string{p}}
		if !slices.ContainsFunc(names, one.Match) {
			missing = append(missing, p)
		}
	}
	return missing
}
