// Package ui provides layout helpers shared by the panes: modal overlays and
// display-width aware truncation.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DimStyle greys out the content behind a modal. Background text is stripped
// of its own colors first since faint does not combine reliably with them.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

func widest(lines []string) int {
	w := 0
	for _, l := range lines {
		if lw := ansi.StringWidth(l); lw > w {
			w = lw
		}
	}
	return w
}

func dim(s string) string {
	return DimStyle.Render(ansi.Strip(s))
}

// spliceRow puts row over bg starting at column x, dimming what is left of
// bg on either side.
func spliceRow(bg, row string, x, rowWidth int) string {
	plain := ansi.Strip(bg)
	plainWidth := ansi.StringWidth(plain)

	var b strings.Builder
	if x > 0 {
		left := ansi.Truncate(plain, x, "")
		b.WriteString(DimStyle.Render(left))
		if lw := ansi.StringWidth(left); lw < x {
			b.WriteString(strings.Repeat(" ", x-lw))
		}
	}
	b.WriteString(row)
	if end := x + rowWidth; plainWidth > end {
		b.WriteString(DimStyle.Render(ansi.Cut(plain, end, plainWidth)))
	}
	return b.String()
}

// Overlay centers modal over a dimmed background of width x height cells.
// The result always has exactly height lines.
func Overlay(background, modal string, width, height int) string {
	bg := strings.Split(background, "\n")
	fg := strings.Split(modal, "\n")

	fgWidth := widest(fg)
	x := max(0, (width-fgWidth)/2)
	y := max(0, (height-len(fg))/2)

	out := make([]string, height)
	for i := 0; i < height; i++ {
		line := ""
		if i < len(bg) {
			line = bg[i]
		}
		if j := i - y; j >= 0 && j < len(fg) {
			out[i] = spliceRow(line, fg[j], x, fgWidth)
		} else {
			out[i] = dim(line)
		}
	}
	return strings.Join(out, "\n")
}
