// Package marker holds the one definition of what a turn boundary looks
// like. Both the parser and the store's invariant validator go through
// IsBoundary so a line can never count as a boundary in one layer and not
// the other.
package marker

import (
	"strings"
	"unicode"
)

// DefaultToken is the line prefix that opens a new conversation turn.
const DefaultToken = "Me"

// IsBoundary reports whether the line opens a new turn for the given marker
// token. The line is trimmed and stripped of invisible characters before the
// prefix check, so indented or zero-width-polluted marker lines still count.
func IsBoundary(line, token string) bool {
	if token == "" {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(StripInvisible(line)), token)
}

// Sanitize normalizes text for storage and display: invisible characters
// removed, internal whitespace runs collapsed to a single space per line,
// leading/trailing whitespace trimmed. Line breaks are preserved.
func Sanitize(text string) string {
	lines := strings.Split(StripInvisible(text), "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SanitizeName normalizes a participant name to a single-line form.
func SanitizeName(name string) string {
	return strings.TrimSpace(collapseSpaces(StripInvisible(name)))
}

// StripInvisible removes zero-width and BOM code points
// (U+200B..U+200D, U+FEFF).
func StripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			return -1
		}
		return r
	}, s)
}

// collapseSpaces reduces runs of horizontal whitespace to one space and
// trims the line ends.
func collapseSpaces(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	inRun := false
	for _, r := range line {
		if unicode.IsSpace(r) {
			inRun = true
			continue
		}
		if inRun && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}
