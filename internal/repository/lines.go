package repository

import "strings"

// CommentPrefix marks a line that is ignored.
const CommentPrefix = "#"

// ParseLines splits repository text into lines and drops comments.
// Lines end at "\n" with an optional "\r"; a final newline does not produce
// an extra empty line. Blank lines are kept: they classify as Malformed.
func ParseLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
