package rox

import (
	"fmt"
	"strconv"
	"strings"
)

// formatCodeFrame renders the offending line, the line before it when there
// is one, and a caret under the column.
func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := strings.TrimRight(lines[pos.Line-1], "\r")
	column := min(max(pos.Column, 1), len([]rune(lineText))+1)

	gutterWidth := len(strconv.Itoa(pos.Line))
	var b strings.Builder
	fmt.Fprintf(&b, "  --> line %d, column %d", pos.Line, column)
	if pos.Line > 1 {
		prev := strings.TrimRight(lines[pos.Line-2], "\r")
		if strings.TrimSpace(prev) != "" {
			fmt.Fprintf(&b, "\n %*d | %s", gutterWidth, pos.Line-1, prev)
		}
	}
	fmt.Fprintf(&b, "\n %*d | %s", gutterWidth, pos.Line, lineText)
	fmt.Fprintf(&b, "\n %s | %s^", strings.Repeat(" ", gutterWidth), strings.Repeat(" ", column-1))
	return b.String()
}
