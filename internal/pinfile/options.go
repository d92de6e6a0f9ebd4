// Package pinfile reads and rewrites the registry block embedded in a host
// Go source file between two sentinel marker lines.
//
// The block is the only machine-owned region of the file:
//
//	// BEGIN
//	var Repos = []Repo{
//		{Name: "owner/project", Version: "3e7b0a1", WatchedPaths: []string{"grammars"}},
//	}
//	// END
//
// Everything outside it, including both markers, is copied through
// byte for byte on rewrite.
package pinfile

import "errors"

// ErrConfigCorruption marks a host file whose markers or block no longer
// have the shape pinkeeper emits. No partial rewrite is ever attempted.
var ErrConfigCorruption = errors.New("config corruption")

const (
	DefaultBeginMarker  = "// BEGIN\n"
	DefaultEndMarker    = "// END\n"
	DefaultVarName      = "Repos"
	DefaultTypeName     = "Repo"
	DefaultMaxLineWidth = 80
	DefaultAnnotation   = "//nolint:lll"
)

// Options describes the host block layout.
type Options struct {
	BeginMarker string
	EndMarker   string
	VarName     string
	TypeName    string
	// MaxLineWidth is the longest line, in characters excluding the newline,
	// rendered without Annotation.
	MaxLineWidth int
	Annotation   string
}

// DefaultOptions returns the standard block layout.
func DefaultOptions() Options {
	return Options{
		BeginMarker:  DefaultBeginMarker,
		EndMarker:    DefaultEndMarker,
		VarName:      DefaultVarName,
		TypeName:     DefaultTypeName,
		MaxLineWidth: DefaultMaxLineWidth,
		Annotation:   DefaultAnnotation,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BeginMarker == "" {
		o.BeginMarker = d.BeginMarker
	}
	if o.EndMarker == "" {
		o.EndMarker = d.EndMarker
	}
	if o.VarName == "" {
		o.VarName = d.VarName
	}
	if o.TypeName == "" {
		o.TypeName = d.TypeName
	}
	if o.MaxLineWidth <= 0 {
		o.MaxLineWidth = d.MaxLineWidth
	}
	if o.Annotation == "" {
		o.Annotation = d.Annotation
	}
	return o
}
