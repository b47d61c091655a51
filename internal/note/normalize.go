package note

import (
	"regexp"
	"strings"
)

// MaxNoteLength is the absolute input cap. Longer notes are truncated
// rather than rejected; the parser surfaces a warning when that
// happens.
const MaxNoteLength = 200_000

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// Normalize prepares raw note text for segmentation: line endings are
// unified, trailing whitespace is stripped per line, runs of three or
// more newlines collapse to exactly two (single blank lines survive as
// section-break evidence), and the whole document is trimmed. Input
// beyond MaxNoteLength is dropped. Normalize never fails; the empty
// string passes through unchanged.
func Normalize(text string) string {
	s, _ := normalizeBounded(text)
	return s
}

// normalizeBounded is Normalize plus a flag reporting whether the
// input exceeded MaxNoteLength and was truncated.
func normalizeBounded(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	truncated := false
	if len(text) > MaxNoteLength {
		text = text[:MaxNoteLength]
		truncated = true
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	text = excessBlankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text), truncated
}
