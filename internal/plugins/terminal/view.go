package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/codeshell/internal/state"
	"github.com/marcus/codeshell/internal/styles"
	term "github.com/marcus/codeshell/internal/terminal"
	"github.com/marcus/codeshell/internal/ui"
)

// View renders the pane at the given outer size.
func (p *Plugin) View(width, height int) string {
	p.width = width
	p.viewHeight = height
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)

	var body []string
	if p.panel == state.PanelOutput {
		body = p.outputLines(innerW)
	} else {
		body = p.terminalLines(innerW)
	}

	bodyH := max(innerH-1, 1)
	maxScroll := max(len(body)-bodyH, 0)
	p.scroll = min(p.scroll, maxScroll)
	start := max(len(body)-bodyH-p.scroll, 0)
	end := min(start+bodyH, len(body))

	lines := append([]string{p.renderHeader(innerW)}, body[start:end]...)
	return styles.RenderPanel(strings.Join(lines, "\n"), width, height, p.focused)
}

// renderHeader draws the panel switcher and command status.
func (p *Plugin) renderHeader(width int) string {
	tab := func(label, panel string) string {
		if p.panel == panel {
			return styles.TabActive.Render(label)
		}
		return styles.TabInactive.Render(label)
	}
	left := tab("TERMINAL", state.PanelTerminal) + " " + tab("OUTPUT", state.PanelOutput)

	var status []string
	if _, command, ok := p.session.Running(); ok {
		status = append(status, "running: "+command)
	}
	if n := len(p.session.Queued()); n > 0 {
		status = append(status, fmt.Sprintf("%d queued", n))
	}
	if p.scroll > 0 {
		status = append(status, fmt.Sprintf("+%d", p.scroll))
	}
	if len(status) == 0 {
		return ansi.Truncate(left, width, "")
	}
	avail := width - ansi.StringWidth(left) - 2
	if avail < 4 {
		return ansi.Truncate(left, width, "")
	}
	return left + "  " + styles.Muted.Render(ui.Truncate(strings.Join(status, "  "), avail))
}

// terminalLines renders scrollback followed by the input line.
func (p *Plugin) terminalLines(width int) []string {
	src := p.session.Lines()
	out := make([]string, 0, len(src)+1)
	for _, l := range src {
		out = append(out, p.renderLine(l, width))
	}

	prompt := p.session.Prompt
	input := p.session.Input()
	cursor := ""
	if p.focused {
		cursor = "█"
	}
	avail := max(width-ansi.StringWidth(prompt)-1, 1)
	out = append(out, styles.TermPrompt.Render(prompt)+ui.TruncateLeft(input, avail)+cursor)
	return out
}

func (p *Plugin) renderLine(l term.Line, width int) string {
	text := ui.Truncate(cleanLine(l.Text), width)
	switch l.Stream {
	case term.Stderr:
		return styles.TermStderr.Render(text)
	case term.System:
		if rest, ok := strings.CutPrefix(text, p.session.Prompt); ok {
			return styles.TermPrompt.Render(p.session.Prompt) + styles.TermStdout.Render(rest)
		}
		return styles.TermSystem.Render(text)
	default:
		return styles.TermStdout.Render(text)
	}
}

// outputLines renders the application log.
func (p *Plugin) outputLines(width int) []string {
	if p.ctx == nil || p.ctx.LogBuffer == nil {
		return []string{styles.Muted.Render("No log output")}
	}
	src := p.ctx.LogBuffer.Lines()
	if len(src) == 0 {
		return []string{styles.Muted.Render("No log output")}
	}
	out := make([]string, len(src))
	for i, l := range src {
		out[i] = styles.TermSystem.Render(ui.Truncate(cleanLine(l), width))
	}
	return out
}

// cleanLine strips escape sequences and expands tabs in command output.
func cleanLine(s string) string {
	return strings.ReplaceAll(ansi.Strip(s), "\t", "    ")
}
