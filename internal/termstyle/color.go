// SPDX-License-Identifier: MIT
package termstyle

import (
	"github.com/liggitt/tabwriter"
	"github.com/skaphos/pinkeeper/internal/model"
)

const (
	Reset = "\x1b[0m"
	Green = "\x1b[32m"
	Brown = "\x1b[33m"
	Red   = "\x1b[31m"
	Blue  = "\x1b[34m"
	Gray  = "\x1b[90m"

	// Semantic aliases used by update/check output.
	Advanced  = Green
	Unchanged = Blue
	Skipped   = Gray
	Pending   = Brown
	Error     = Red
)

// Colorize wraps a value in ANSI escapes when color output is enabled.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	// Hide ANSI sequences from tabwriter width calculations so columns align.
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}

// ForOutcome returns the color for an outcome kind. In a dry run an advance
// has not been written yet and is shown as pending.
func ForOutcome(kind model.OutcomeKind, dryRun bool) string {
	switch kind {
	case model.OutcomeAdvanced:
		if dryRun {
			return Pending
		}
		return Advanced
	case model.OutcomeUnchanged:
		return Unchanged
	case model.OutcomeSkipped:
		return Skipped
	default:
		return ""
	}
}
