package pinfile

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"

	"github.com/skaphos/pinkeeper/internal/model"
)

// File is a host source file with its parsed registry block.
type File struct {
	Path string
	// Source is the full file content as read.
	Source  string
	Records []model.RepoRecord
}

// ReadFile loads path and parses the block between the configured markers.
func ReadFile(path string, opts Options) (*File, error) {
	opts = opts.withDefaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src := string(data)
	block, err := Extract(src, opts.BeginMarker, opts.EndMarker)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	records, err := Parse(block, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{Path: path, Source: src, Records: records}, nil
}

// Rewrite renders records into a new block, splices it into f.Source and
// replaces the file on disk in one rename. The block is written the way gofmt
// would lay it out in the host file, so a rewritten file stays gofmt clean.
// When a marker is missing nothing is written.
func (f *File) Rewrite(records []model.RepoRecord, opts Options) (string, error) {
	opts = opts.withDefaults()
	rendered := Render(records, opts)
	spliced, err := Splice(f.Source, opts.BeginMarker, opts.EndMarker, rendered)
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Path, err)
	}
	out, err := Splice(f.Source, opts.BeginMarker, opts.EndMarker, formatBlock(spliced, rendered, opts))
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Path, err)
	}
	if err := writeAtomic(f.Path, []byte(out)); err != nil {
		return "", err
	}
	f.Source = out
	f.Records = records
	return out, nil
}

// formatBlock returns block as gofmt leaves it inside spliced. Only the
// region between the markers is taken from the formatted file. A host that
// does not parse gets the block formatted on its own, and a block that does
// not format either is returned as is.
func formatBlock(spliced, block string, opts Options) string {
	if out, err := format.Source([]byte(spliced)); err == nil {
		if formatted, err := Extract(string(out), opts.BeginMarker, opts.EndMarker); err == nil {
			return formatted
		}
	}
	if out, err := format.Source([]byte(block)); err == nil {
		return string(out)
	}
	return block
}

func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
