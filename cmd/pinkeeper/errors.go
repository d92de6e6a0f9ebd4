package pinkeeper

import (
	"errors"

	"github.com/skaphos/pinkeeper/internal/gitx"
	"github.com/skaphos/pinkeeper/internal/pinfile"
	"github.com/skaphos/pinkeeper/internal/resolve"
)

const (
	exitOK               = 0
	exitUpdatesAvailable = 1
	exitResolution       = 2
	exitFatal            = 3
)

// exitCodeForError maps a failed run to its exit status. Registry and remote
// failures are resolution errors; anything else is fatal.
func exitCodeForError(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, resolve.ErrOrphanedRevision),
		errors.Is(err, pinfile.ErrConfigCorruption),
		errors.Is(err, gitx.ErrRemoteUnavailable),
		errors.Is(err, gitx.ErrNoMatchingRevision):
		return exitResolution
	default:
		return exitFatal
	}
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, resolve.ErrOrphanedRevision):
		return "orphaned"
	case errors.Is(err, pinfile.ErrConfigCorruption):
		return "config_corruption"
	default:
		return gitx.ClassifyError(err)
	}
}
