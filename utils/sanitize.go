package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips any markup from externally generated text. Obituary content
// comes back from an LLM and is pasted into posts verbatim, so it is cleaned
// before it is displayed or saved. Entities are unescaped afterwards because
// the result is treated as plain text, not HTML.
func Sanitize(input string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(input)))
}
