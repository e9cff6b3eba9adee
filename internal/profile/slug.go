package profile

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
)

// Slug turns a profile identifier (URL or username) into a file-system safe
// key: lowercase ASCII words joined by single underscores.
func Slug(identifier string) string {
	// Anything but letters and digits separates words. Mapping it to a space
	// first keeps slug from spelling out "&" and "@" or keeping "_".
	s := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, identifier)
	return strings.ReplaceAll(slug.Make(s), "-", "_")
}

// TrimPattern returns a slug normalizer that removes the first match of re
// (typically an anchored URL prefix) and any separators left at the edges.
// Slugs that do not match are returned unchanged.
func TrimPattern(re *regexp.Regexp) func(string) string {
	return func(s string) string {
		loc := re.FindStringIndex(s)
		if loc == nil {
			return s
		}
		trimmed := strings.Trim(s[:loc[0]]+s[loc[1]:], "_/")
		if trimmed == "" {
			return s
		}
		return trimmed
	}
}
