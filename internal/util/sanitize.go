package util

import (
	"regexp"
	"strings"
)

var markupPattern = regexp.MustCompile(`[*#_>]`)

// StripMarkup removes markdown decoration characters from generated text so
// rationales render as plain prose. Wording is left untouched.
func StripMarkup(s string) string {
	return strings.TrimSpace(markupPattern.ReplaceAllString(s, ""))
}
