package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize strips leading/trailing whitespace and collapses any
// internal run of whitespace to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeName cleans a guest name before validation, so length limits
// count real characters rather than stray padding.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}
