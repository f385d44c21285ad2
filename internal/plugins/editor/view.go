package editor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/marcus/codeshell/internal/highlight"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/styles"
	"github.com/marcus/codeshell/internal/tabs"
	"github.com/marcus/codeshell/internal/ui"
)

const gutterWidth = 6 // LineNumber width plus a space

// View renders the editor pane at the given outer size.
func (p *Plugin) View(width, height int) string {
	p.width = width
	p.height = height
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)

	tab, ok := p.tabs.ActiveTab()
	if !ok {
		return styles.RenderPanel(p.renderEmpty(innerW), width, height, p.focused)
	}

	bodyH := max(innerH-2, 1)
	p.syncViewport(tab, innerW, bodyH)

	parts := []string{
		p.renderTabBar(innerW),
		p.vp.View(),
		p.renderStatus(tab, innerW),
	}
	return styles.RenderPanel(strings.Join(parts, "\n"), width, height, p.focused)
}

func (p *Plugin) renderEmpty(width int) string {
	lines := []string{styles.Muted.Render(ui.Truncate("No file open", width))}
	if key := p.keyFor("quick-open", keymap.Global); key != "" {
		lines = append(lines, styles.Subtle.Render(ui.Truncate("Press "+key+" to find a file", width)))
	}
	return strings.Join(lines, "\n")
}

// showingMarkdown reports whether tab is displayed as rendered markdown.
func (p *Plugin) showingMarkdown(tab tabs.Tab) bool {
	return p.renderMarkdown && highlight.IsMarkdown(tab.Name)
}

// syncViewport loads tab into the viewport when it or the layout changed.
func (p *Plugin) syncViewport(tab tabs.Tab, width, height int) {
	p.vp.Width = width
	p.vp.Height = height

	key := viewKey{
		path:        tab.Path,
		fingerprint: tab.Fingerprint,
		markdown:    p.showingMarkdown(tab),
		width:       width,
	}
	if key == p.shown {
		return
	}
	p.vp.SetContent(strings.Join(p.renderLines(tab, width), "\n"))
	p.shown = key
	if p.restoreScroll {
		p.vp.SetYOffset(tab.Scroll)
		p.restoreScroll = false
	}
}

// renderLines produces display lines for tab, each at most width cells.
func (p *Plugin) renderLines(tab tabs.Tab, width int) []string {
	if p.showingMarkdown(tab) {
		lines, err := p.renderer.Markdown(tab.Path, tab.Fingerprint, tab.Content, width)
		if err == nil {
			for i, l := range lines {
				lines[i] = ansi.Truncate(l, width, "")
			}
			return lines
		}
		p.ctx.Logger.Debug("editor: markdown render failed", "path", tab.Path, "err", err)
	}

	code := p.renderer.Code(tab.Path, tab.Fingerprint, tab.Content)
	textW := max(width-gutterWidth, 1)
	out := make([]string, len(code))
	for i, l := range code {
		out[i] = styles.LineNumber.Render(fmt.Sprint(i+1)) + " " + ansi.Truncate(l, textW, "")
	}
	return out
}

// renderTabBar draws the tab strip, cut to width.
func (p *Plugin) renderTabBar(width int) string {
	active := p.tabs.ActiveID()
	var b strings.Builder
	for _, t := range p.tabs.Tabs() {
		label := t.Name
		if t.ChangedOnDisk {
			label += " *"
		}
		if t.ID == active {
			b.WriteString(styles.TabActive.Render(label))
		} else {
			b.WriteString(styles.TabInactive.Render(label))
		}
		b.WriteString(" ")
	}
	return ansi.Truncate(b.String(), width, "…")
}

// renderStatus draws the line under the content.
func (p *Plugin) renderStatus(tab tabs.Tab, width int) string {
	info := []string{highlight.Language(tab.Name)}
	if highlight.IsMarkdown(tab.Name) {
		if p.showingMarkdown(tab) {
			info = append(info, "preview")
		} else {
			info = append(info, "source")
		}
	}
	info = append(info,
		fmt.Sprintf("%d lines", len(highlight.PlainLines(tab.Content))),
		humanize.Bytes(uint64(len(tab.Content))),
	)
	if total := p.vp.TotalLineCount(); total > p.vp.Height {
		info = append(info, fmt.Sprintf("%d%%", int(p.vp.ScrollPercent()*100)))
	}
	right := strings.Join(info, "  ")

	if tab.ChangedOnDisk {
		warn := "changed on disk"
		if key := p.keyFor("reload", keymap.ContextEditor); key != "" {
			warn += " (" + key + " to reload)"
		}
		right = styles.TabChanged.Render(warn) + "  " + styles.Muted.Render(right)
	} else {
		right = styles.Muted.Render(right)
	}

	pathW := width - ansi.StringWidth(right) - 2
	path := p.displayPath(tab.Path)
	if pathW < 8 {
		return ansi.Truncate(right, width, "")
	}
	path = ui.PadRight(ui.TruncateLeft(path, pathW), pathW)
	return styles.Subtitle.Render(path) + "  " + right
}

// displayPath shows path relative to the workspace when it is inside it.
func (p *Plugin) displayPath(path string) string {
	if p.ctx == nil || p.ctx.WorkDir == "" {
		return path
	}
	rel, err := filepath.Rel(p.ctx.WorkDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func (p *Plugin) keyFor(command, context string) string {
	if p.ctx == nil || p.ctx.Keymap == nil {
		return ""
	}
	if keys := p.ctx.Keymap.KeysFor(command, context); len(keys) > 0 {
		return keys[0]
	}
	return ""
}
