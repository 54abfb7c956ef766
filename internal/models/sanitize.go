package models

import (
	"html"
	"strings"
)

// SanitizeText trims surrounding whitespace and escapes the characters that
// are dangerous when a value is rendered as markup (< > & ' ").
func SanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
