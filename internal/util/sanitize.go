package util

import (
	"strings"
	"unicode"
)

// SanitizeText strips control and invisible characters from user supplied
// text, trims it and caps it at maxRunes (0 means no cap). Newlines and tabs
// survive when keepNewlines is set.
func SanitizeText(value string, maxRunes int, keepNewlines bool) string {
	builder := strings.Builder{}
	builder.Grow(len(value))

	for _, char := range value {
		if keepNewlines && (char == '\n' || char == '\t') {
			builder.WriteRune(char)
			continue
		}
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.TrimSpace(builder.String())

	// Truncate by runes so multi-byte characters stay intact.
	if maxRunes > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxRunes {
			cleaned = strings.TrimSpace(string(runes[:maxRunes]))
		}
	}

	return cleaned
}

// isInvisibleUnicode reports zero-width and other formatting characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u2060', // Word Joiner
		'\uFEFF', // Zero-Width No-Break Space / BOM
		'\uFFF9', // Interlinear Annotation Anchor
		'\uFFFA', // Interlinear Annotation Separator
		'\uFFFB': // Interlinear Annotation Terminator
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
