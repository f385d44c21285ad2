package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Truncate shortens plain text to at most width display cells, ending with
// an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// TruncateLeft keeps the tail of s, for paths where the file name matters
// more than its parents.
func TruncateLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := runewidth.StringWidth(s)
	if w <= width {
		return s
	}
	return "…" + runewidth.TruncateLeft(s, w-width+1, "")
}

// PadRight pads plain text with spaces to width display cells.
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// ClipLines returns lines[offset:offset+height], each cut to width cells.
// Lines may carry ANSI styling.
func ClipLines(lines []string, offset, width, height int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(lines) {
		offset = len(lines)
	}
	end := min(len(lines), offset+height)
	out := make([]string, 0, end-offset)
	for _, l := range lines[offset:end] {
		out = append(out, ansi.Truncate(l, width, ""))
	}
	return out
}
