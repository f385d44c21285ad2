package editor

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/highlight"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/msg"
	"github.com/marcus/codeshell/internal/plugin"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

func (p *Plugin) handleKey(key tea.KeyMsg) (plugin.Plugin, tea.Cmd) {
	switch p.ctx.Lookup(key.String(), keymap.ContextEditor) {
	case "scroll-down":
		p.scrollTo(p.vp.YOffset + 1)
	case "scroll-up":
		p.scrollTo(p.vp.YOffset - 1)
	case "page-down":
		p.scrollTo(p.vp.YOffset + max(p.vp.Height, 1))
	case "page-up":
		p.scrollTo(p.vp.YOffset - max(p.vp.Height, 1))
	case "scroll-top":
		p.vp.GotoTop()
	case "scroll-bottom":
		p.vp.GotoBottom()

	case "next-tab":
		return p, p.cycle(1)
	case "prev-tab":
		return p, p.cycle(-1)
	case "close-tab":
		return p, p.closeActive()

	case "toggle-markdown":
		tab, ok := p.tabs.ActiveTab()
		if !ok || !highlight.IsMarkdown(tab.Name) {
			return p, nil
		}
		p.renderMarkdown = !p.renderMarkdown
		p.tabs.SaveScroll(0)
		p.switched()

	case "reload":
		if tab, ok := p.tabs.ActiveTab(); ok {
			return p, p.reloadFile(tab.Path)
		}

	case "yank-path":
		tab, ok := p.tabs.ActiveTab()
		if !ok {
			return p, nil
		}
		if err := writeClipboard(tab.Path); err != nil {
			return p, msg.ShowError(fmt.Errorf("copy path: %w", err))
		}
		return p, msg.ShowToast("Copied "+tab.Name, 2*time.Second)
	}
	return p, nil
}

func (p *Plugin) scrollTo(offset int) {
	p.vp.SetYOffset(max(offset, 0))
}

func (p *Plugin) cycle(delta int) tea.Cmd {
	p.tabs.SaveScroll(p.vp.YOffset)
	if !p.tabs.Cycle(delta) {
		return nil
	}
	p.switched()
	return p.activeChanged()
}

func (p *Plugin) closeActive() tea.Cmd {
	tab, ok := p.tabs.ActiveTab()
	if !ok {
		return nil
	}
	p.tabs.CloseTab(tab.ID)
	p.renderer.Forget(tab.Path)
	p.syncWatcher()
	p.switched()
	return p.activeChanged()
}
