package usecase

import "strings"

const (
	// TitleWidth is the longest word kept intact in an issue title.
	TitleWidth = 25
	// BodyWidth is the longest word kept intact in an issue summary.
	BodyWidth = 50

	truncationMarker = ".."
)

// Sanitize splits s on whitespace, cuts every word longer than width runes
// down to width runes followed by "..", and joins the words back with single
// spaces. Long words would otherwise force table columns too wide.
func Sanitize(s string, width int) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		if len(runes) > width {
			words[i] = string(runes[:width]) + truncationMarker
		}
	}
	return strings.Join(words, " ")
}

// normalizeLineBreaks replaces carriage returns and newlines with spaces so
// a value stays inside one markdown table row.
func normalizeLineBreaks(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
