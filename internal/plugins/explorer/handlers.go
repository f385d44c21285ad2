package explorer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/msg"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/workspace"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

const (
	minTreeWidth = 16
	maxTreeWidth = 80
	widthStep    = 4
)

// handleKey handles key input in tree mode.
func (p *Plugin) handleKey(key tea.KeyMsg) (plugin.Plugin, tea.Cmd) {
	switch p.ctx.Lookup(key.String(), keymap.ContextExplorer) {
	case "cursor-down":
		p.moveCursor(1)
	case "cursor-up":
		p.moveCursor(-1)
	case "cursor-top":
		p.cursor = 0
		p.ensureCursorVisible()
	case "cursor-bottom":
		p.cursor = len(p.rows) - 1
		p.clampCursor()
	case "page-down":
		p.moveCursor(p.visibleHeight() / 2)
	case "page-up":
		p.moveCursor(-p.visibleHeight() / 2)

	case "open":
		return p, p.openSelected()
	case "expand":
		return p, p.expandSelected()
	case "collapse":
		p.collapseSelected()
	case "collapse-all":
		p.ws.CollapseAll()
		p.refreshRows()
		p.persist()

	case "refresh":
		if p.ctx.WorkDir == "" {
			return p, nil
		}
		p.persist()
		p.carryExpanded = append([]string{}, p.ws.ExpandedPaths()...)
		return p, p.build(p.ctx.WorkDir)

	case "yank-path":
		row, ok := p.selected()
		if !ok || row.Kind != workspace.RowNode {
			return p, nil
		}
		if err := writeClipboard(row.Node.Path); err != nil {
			return p, msg.ShowError(fmt.Errorf("copy path: %w", err))
		}
		return p, msg.ShowToast("Copied "+row.Node.Name, 2*time.Second)

	case "widen":
		p.resize(widthStep)
	case "narrow":
		p.resize(-widthStep)
	}
	return p, nil
}

func (p *Plugin) moveCursor(delta int) {
	p.cursor += delta
	p.clampCursor()
}

// openSelected opens a file or toggles a folder.
func (p *Plugin) openSelected() tea.Cmd {
	row, ok := p.selected()
	if !ok {
		return nil
	}
	if row.Kind != workspace.RowNode {
		// Placeholder rows act on their folder; a failed one retries.
		return p.expandPath(row.Node.Path)
	}
	if !row.Node.IsFolder() {
		return msg.OpenFile(row.Node.Path, row.Node.Name)
	}
	req, load := p.ws.ToggleExpanded(row.Node.Path)
	p.refreshRows()
	p.persist()
	if load {
		return p.expand(req)
	}
	return nil
}

func (p *Plugin) expandSelected() tea.Cmd {
	row, ok := p.selected()
	if !ok {
		return nil
	}
	if row.Kind == workspace.RowNode && !row.Node.IsFolder() {
		return nil
	}
	return p.expandPath(row.Node.Path)
}

func (p *Plugin) expandPath(path string) tea.Cmd {
	req, load := p.ws.SetExpanded(path, true)
	p.refreshRows()
	p.persist()
	if load {
		return p.expand(req)
	}
	return nil
}

// collapseSelected collapses an expanded folder, otherwise moves to the
// parent folder row.
func (p *Plugin) collapseSelected() {
	row, ok := p.selected()
	if !ok {
		return
	}
	if row.Kind == workspace.RowNode && row.Node.IsFolder() && row.Expanded {
		p.ws.SetExpanded(row.Node.Path, false)
		p.refreshRows()
		p.persist()
		return
	}
	parent := row.Node.Path
	if row.Kind == workspace.RowNode {
		parent = filepath.Dir(row.Node.Path)
	}
	if i := workspace.IndexOf(p.rows, parent); i >= 0 {
		p.cursor = i
		p.ensureCursorVisible()
	}
}

func (p *Plugin) resize(delta int) {
	w := p.treeWidth + delta
	if w < minTreeWidth {
		w = minTreeWidth
	}
	if w > maxTreeWidth {
		w = maxTreeWidth
	}
	if w == p.treeWidth {
		return
	}
	p.treeWidth = w
	p.persist()
}

// visibleHeight is the number of tree rows that fit in the pane.
func (p *Plugin) visibleHeight() int {
	h := p.height - 3 // border and title
	if h < 1 {
		return 1
	}
	return h
}

func (p *Plugin) ensureCursorVisible() {
	if p.height == 0 {
		return // not laid out yet
	}
	vis := p.visibleHeight()
	if maxScroll := len(p.rows) - vis; p.scroll > maxScroll {
		p.scroll = max(maxScroll, 0)
	}
	if p.cursor < p.scroll {
		p.scroll = p.cursor
	} else if p.cursor >= p.scroll+vis {
		p.scroll = p.cursor - vis + 1
	}
	if p.scroll < 0 {
		p.scroll = 0
	}
}
