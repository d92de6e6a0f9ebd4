package pinfile

import (
	"fmt"
	"strings"
)

// locate returns the byte offsets of the region strictly between the first
// begin marker and the first end marker after it.
func locate(src, begin, end string) (int, int, error) {
	i := strings.Index(src, begin)
	if i < 0 {
		return 0, 0, fmt.Errorf("%w: begin marker %q not found", ErrConfigCorruption, begin)
	}
	start := i + len(begin)
	j := strings.Index(src[start:], end)
	if j < 0 {
		return 0, 0, fmt.Errorf("%w: end marker %q not found", ErrConfigCorruption, end)
	}
	return start, start + j, nil
}

// Extract returns the text strictly between the markers.
func Extract(src, begin, end string) (string, error) {
	start, stop, err := locate(src, begin, end)
	if err != nil {
		return "", err
	}
	return src[start:stop], nil
}

// Splice replaces the text strictly between the markers with block. Text
// outside the region and both markers are kept byte for byte.
func Splice(src, begin, end, block string) (string, error) {
	start, stop, err := locate(src, begin, end)
	if err != nil {
		return "", err
	}
	return src[:start] + block + src[stop:], nil
}
