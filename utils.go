package casepipe

import (
	"regexp"
	"strings"
)

// SanitizeEngineOutput strips incidental formatting that analysis engines
// wrap around their JSON: fenced code delimiters and a leading byte-order
// marker.
func SanitizeEngineOutput(b []byte) []byte {
	s := strings.TrimPrefix(string(b), "\uFEFF")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}

// chunk splits items into consecutive slices of at most size elements,
// preserving order.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}

var unsafeNameChars = regexp.MustCompile(`[^\w.-]`)

// safeFileName flattens anything outside [A-Za-z0-9_.-] so an uploaded name
// cannot escape its workspace directory.
func safeFileName(name string) string {
	base := unsafeNameChars.ReplaceAllString(name, "_")
	if base == "" {
		base = "upload"
	}
	return base
}
