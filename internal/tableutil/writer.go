package tableutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/liggitt/tabwriter"
)

// None is the placeholder shown for an empty cell.
const None = "-"

// New creates a tabwriter with pinkeeper's default spacing settings.
func New(out io.Writer, stripEscape bool) *tabwriter.Writer {
	var flags uint
	if stripEscape {
		flags = tabwriter.StripEscape
	}
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', flags)
}

// PrintHeaders writes a tab-separated header row unless disabled.
func PrintHeaders(w io.Writer, noHeaders bool, headers string) error {
	if noHeaders {
		return nil
	}
	_, err := fmt.Fprintln(w, headers)
	return err
}

// JoinCell joins values with commas for a single cell, shortening the result
// to limit runes with a trailing "..." when limit is positive.
func JoinCell(values []string, limit int) string {
	if len(values) == 0 {
		return None
	}
	return Truncate(strings.Join(values, ","), limit)
}

// Truncate shortens value to at most limit runes. A limit of zero or less
// disables truncation.
func Truncate(value string, limit int) string {
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
