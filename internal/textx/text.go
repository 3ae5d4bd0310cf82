// Package textx contains small text helpers for the quick-capture paths:
// deriving a title from free text and pulling the first URL out of a message.
package textx

import "strings"

const maxTitleLen = 80

// SummarizeTitle derives an entry title from free text: the first line,
// trimmed and cut to 80 runes. Empty input falls back to "quick note".
func SummarizeTitle(text string) string {
	firstLine, _, _ := strings.Cut(text, "\n")
	title := strings.TrimSpace(firstLine)

	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen])
	}
	if title == "" {
		return "quick note"
	}
	return title
}

// ExtractURL returns the first http:// or https:// token in text, with
// trailing punctuation stripped. Returns "" if no URL is present.
func ExtractURL(text string) string {
	for _, part := range strings.Fields(text) {
		if strings.HasPrefix(part, "http://") || strings.HasPrefix(part, "https://") {
			return strings.TrimRight(part, ")]},.;")
		}
	}
	return ""
}
