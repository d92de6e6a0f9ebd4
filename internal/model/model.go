// Package model defines the core data types used throughout pinkeeper.
package model

import (
	"slices"
	"time"
)

// HeadVersion is the sentinel version meaning "always track the branch tip".
const HeadVersion = "HEAD"

// RepoRecord is a single pinned upstream repository. It is treated as an
// immutable value: use WithVersion to derive a changed record.
type RepoRecord struct {
	// Name is the hosting path of the repository (for example, "owner/project").
	Name string `json:"name" yaml:"name"`
	// Version is the pinned revision (short hash or tag), or HeadVersion.
	Version string `json:"version" yaml:"version"`
	// WatchedPaths are the repository paths whose history moves the pin.
	WatchedPaths []string `json:"watched_paths" yaml:"watched_paths"`
}

// TracksHead reports whether the record follows the branch tip.
func (r RepoRecord) TracksHead() bool {
	return r.Version == HeadVersion
}

// WithVersion returns a copy of r pinned to version. The receiver is not
// modified and the returned record does not share its path slice.
func (r RepoRecord) WithVersion(version string) RepoRecord {
	return RepoRecord{
		Name:         r.Name,
		Version:      version,
		WatchedPaths: slices.Clone(r.WatchedPaths),
	}
}

// Equal compares all fields. A nil path list equals an empty one.
func (r RepoRecord) Equal(other RepoRecord) bool {
	return r.Name == other.Name &&
		r.Version == other.Version &&
		slices.Equal(r.WatchedPaths, other.WatchedPaths)
}

// OutcomeKind enumerates per-record resolution results.
type OutcomeKind string

const (
	OutcomeUnchanged OutcomeKind = "unchanged"
	OutcomeAdvanced  OutcomeKind = "advanced"
	// OutcomeSkipped marks records excluded by the selective-run filter.
	OutcomeSkipped OutcomeKind = "skipped"
)

// Outcome is the transient result of resolving one record.
type Outcome struct {
	Kind OutcomeKind `json:"kind" yaml:"kind"`
	// Old is the version before resolution.
	Old string `json:"old" yaml:"old"`
	// New is the version after resolution. Equal to Old unless advanced.
	New string `json:"new" yaml:"new"`
	// Branch is the resolved tracking branch. Empty for skipped records.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
	// Record is the full replacement record.
	Record RepoRecord `json:"record" yaml:"record"`
}

// Unchanged builds an outcome that keeps rec as-is.
func Unchanged(rec RepoRecord, branch string) Outcome {
	return Outcome{Kind: OutcomeUnchanged, Old: rec.Version, New: rec.Version, Branch: branch, Record: rec}
}

// Advanced builds an outcome replacing rec's version with version.
func Advanced(rec RepoRecord, branch, version string) Outcome {
	return Outcome{
		Kind:   OutcomeAdvanced,
		Old:    rec.Version,
		New:    version,
		Branch: branch,
		Record: rec.WithVersion(version),
	}
}

// Skipped builds an outcome for a record that was not resolved this run.
func Skipped(rec RepoRecord) Outcome {
	return Outcome{Kind: OutcomeSkipped, Old: rec.Version, New: rec.Version, Record: rec}
}

// UpdateReport is the top-level output of the update and check commands.
type UpdateReport struct {
	// GeneratedAt is the timestamp when this report was produced.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	// Source is the host file the registry was read from.
	Source string `json:"source" yaml:"source"`
	// Changed reports whether the registry differs from the parsed original.
	Changed bool `json:"changed" yaml:"changed"`
	// Written reports whether the host file was rewritten.
	Written bool `json:"written" yaml:"written"`
	// Outcomes holds one row per record, sorted by name.
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
	// Unmatched lists selection patterns that matched no record.
	Unmatched []string `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
}
