package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/mouse"
)

// layout is the pane geometry of the content area.
type layout struct {
	treeWidth  int // 0 when there is no explorer beside the editor
	topHeight  int
	termHeight int // 0 when the terminal is hidden
}

// paneLayout sizes the panes for a content area of width x height.
func (m Model) paneLayout(width, height int) layout {
	l := layout{topHeight: height}
	if bp, ok := m.terminalPane(); ok && bp.Visible() {
		l.termHeight = min(bp.PreferredHeight(), height/2)
		l.topHeight = height - l.termHeight
	}
	explorer := m.pluginByID(explorerID)
	if explorer == nil || m.pluginByID(editorID) == nil {
		return l
	}
	l.treeWidth = m.cfg.UI.TreeWidth
	if ts, ok := explorer.(treeSizer); ok && ts.TreeWidth() > 0 {
		l.treeWidth = ts.TreeWidth()
	}
	l.treeWidth = min(l.treeWidth, width/2)
	return l
}

// contentHeight is the height left for panes after the header and footer.
func (m Model) contentHeight() int {
	h := m.height - headerHeight
	if m.showFooter {
		h -= footerHeight
	}
	return max(h, 0)
}

// hitMap maps screen cells to pane IDs for the current layout.
func (m Model) hitMap() *mouse.HitMap {
	hm := mouse.NewHitMap()
	height := m.contentHeight()
	l := m.paneLayout(m.width, height)
	y := headerHeight

	switch {
	case l.treeWidth > 0:
		hm.AddRect(explorerID, 0, y, l.treeWidth, l.topHeight, nil)
		hm.AddRect(editorID, l.treeWidth, y, m.width-l.treeWidth, l.topHeight, nil)
	case m.pluginByID(editorID) != nil:
		hm.AddRect(editorID, 0, y, m.width, l.topHeight, nil)
	default:
		hm.AddRect(explorerID, 0, y, m.width, l.topHeight, nil)
	}
	if l.termHeight > 0 {
		hm.AddRect(terminalID, 0, y+l.topHeight, m.width, l.termHeight, nil)
	}
	return hm
}

// handleMouse focuses the pane under a click and sends wheel and click
// events to the pane under the pointer.
func (m Model) handleMouse(ev tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.hasModal() || m.paneModalOpen() {
		return m, nil
	}
	region := m.hitMap().Test(ev.X, ev.Y)
	if region == nil {
		return m, nil
	}
	target := m.pluginByID(region.ID)
	if target == nil {
		return m, nil
	}

	var cmds []tea.Cmd
	if ev.Action == tea.MouseActionPress && ev.Button == tea.MouseButtonLeft {
		if active := m.ActivePlugin(); active == nil || active.ID() != region.ID {
			cmds = append(cmds, m.FocusPluginByID(region.ID))
		}
	}
	_, cmd := target.Update(ev)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}
