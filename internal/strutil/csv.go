// SPDX-License-Identifier: MIT
package strutil

import "strings"

// SplitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty items.
func SplitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// SplitAll flattens several CSV values, as collected from repeated flags or
// positional arguments, preserving order.
func SplitAll(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, SplitCSV(v)...)
	}
	return out
}
