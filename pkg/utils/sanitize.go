package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxDisplayNameLength caps stored display names, in runes.
const MaxDisplayNameLength = 64

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all HTML tags from a string
func StripHTML(input string) string {
	return htmlTag.ReplaceAllString(input, "")
}

// CleanDisplayName strips markup and control characters, collapses whitespace and
// truncates to MaxDisplayNameLength runes. Names are echoed back into chat replies.
func CleanDisplayName(input string) string {
	input = StripHTML(input)
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, input)
	input = strings.Join(strings.Fields(input), " ")
	return TruncateRunes(input, MaxDisplayNameLength)
}

// TruncateRunes safely truncates a string to max runes
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
