package sanitization

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeEmail trims and lowercases an email address
func SanitizeEmail(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// SanitizeDisplayName drops control characters and collapses runs of
// whitespace to a single space.
func SanitizeDisplayName(input string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(whitespace.ReplaceAllString(safe, " "))
}
