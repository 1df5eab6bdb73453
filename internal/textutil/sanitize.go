package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe to use as a single path element on any
// common filesystem. Separators, colons and asterisks become dashes; other
// reserved characters and control runes are dropped.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			return '-'
		case strings.ContainsRune(`?"<>|`, r), unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}
