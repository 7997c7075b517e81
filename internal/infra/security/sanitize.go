package security

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxInputLen = 1000

var (
	angleBrackets  = regexp.MustCompile(`[<>]`)
	jsScheme       = regexp.MustCompile(`(?i)javascript:`)
	inlineHandlers = regexp.MustCompile(`(?i)on\w+=`)
)

// SanitizeInput strips markup and script fragments from free-text input and
// caps its length. Stripping repeats until the text stops changing, so
// removing one fragment can never splice a new one together and sanitizing
// twice equals sanitizing once.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	for {
		cleaned := angleBrackets.ReplaceAllString(s, "")
		cleaned = jsScheme.ReplaceAllString(cleaned, "")
		cleaned = inlineHandlers.ReplaceAllString(cleaned, "")
		if cleaned == s {
			break
		}
		s = cleaned
	}
	// Cap by rune count so a multi-byte character is never split.
	if utf8.RuneCountInString(s) > maxInputLen {
		s = string([]rune(s)[:maxInputLen])
	}
	return s
}
