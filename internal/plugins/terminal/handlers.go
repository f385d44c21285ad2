package terminal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/state"
)

const heightStep = 2

func (p *Plugin) handleKey(key tea.KeyMsg) (plugin.Plugin, tea.Cmd) {
	switch p.ctx.Lookup(key.String(), keymap.ContextTerminal) {
	case "run":
		if p.panel != state.PanelTerminal {
			return p, nil
		}
		p.scroll = 0
		id, command, ok := p.session.Submit()
		if !ok {
			return p, nil
		}
		return p, p.start(id, command)
	case "kill":
		if p.proc != nil {
			p.proc.Kill()
		}
		return p, nil
	case "clear":
		if p.panel == state.PanelTerminal {
			p.session.Clear()
		}
		p.scroll = 0
		return p, nil
	case "switch-panel":
		if p.panel == state.PanelTerminal {
			p.panel = state.PanelOutput
		} else {
			p.panel = state.PanelTerminal
		}
		p.scroll = 0
		p.persist()
		return p, nil
	case "scroll-up":
		p.scroll += p.pageSize()
		return p, nil
	case "scroll-down":
		p.scroll = max(p.scroll-p.pageSize(), 0)
		return p, nil
	case "grow":
		p.resize(heightStep)
		return p, nil
	case "shrink":
		p.resize(-heightStep)
		return p, nil
	case "history-prev":
		if p.panel == state.PanelTerminal {
			p.session.HistoryPrev()
		}
		return p, nil
	case "history-next":
		if p.panel == state.PanelTerminal {
			p.session.HistoryNext()
		}
		return p, nil
	}

	if p.panel != state.PanelTerminal {
		return p, nil
	}
	switch key.Type {
	case tea.KeyBackspace:
		p.session.Backspace()
	case tea.KeySpace:
		p.session.Type(" ")
	case tea.KeyRunes:
		p.session.Type(string(key.Runes))
	}
	return p, nil
}

func (p *Plugin) resize(delta int) {
	h := clampHeight(p.height + delta)
	if h == p.height {
		return
	}
	p.height = h
	p.persist()
}

// pageSize is half the visible body, at least one line.
func (p *Plugin) pageSize() int {
	return max((p.viewHeight-4)/2, 1)
}
