// Package terminal is the bottom pane: a line-oriented shell over the
// workspace folder, plus an Output panel showing the application log.
package terminal

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/state"
	term "github.com/marcus/codeshell/internal/terminal"
)

const (
	pluginID   = "terminal"
	pluginName = "Terminal"

	minHeight = 5
	maxHeight = 60
)

// Message types. Every message carries the command id it belongs to; the
// session drops output for any other id.
type (
	startedMsg struct {
		ID   uint64
		Proc *term.Process
		Err  error
	}

	lineMsg struct {
		ID   uint64
		Line term.Line
		proc *term.Process
	}

	exitedMsg struct {
		ID   uint64
		Code int
		Err  error
	}
)

// Plugin implements the terminal pane.
type Plugin struct {
	ctx     *plugin.Context
	runner  term.Runner
	session *term.Session
	proc    *term.Process
	procID  uint64
	focused bool

	visible bool
	height  int
	panel   string
	scroll  int // lines scrolled up from the newest
	workDir string

	width, viewHeight int
}

// New creates a terminal pane running commands through the configured shell.
func New() *Plugin {
	return &Plugin{}
}

// NewWithRunner creates a terminal pane running commands through r.
func NewWithRunner(r term.Runner) *Plugin {
	return &Plugin{runner: r}
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return pluginID }

// Name returns the plugin display name.
func (p *Plugin) Name() string { return pluginName }

// Init initializes the plugin. Scrollback and history survive a workspace
// switch.
func (p *Plugin) Init(ctx *plugin.Context) error {
	first := p.ctx == nil
	p.ctx = ctx
	cfg := ctx.Config.Terminal
	if p.runner == nil {
		p.runner = term.NewShellRunner(cfg.Shell)
	}
	if p.session == nil {
		p.session = term.NewSession(cfg.Scrollback)
	}
	if first {
		p.visible = cfg.Visible
		p.height = cfg.Height
		p.panel = state.PanelTerminal
		if ctx.State != nil {
			saved := ctx.State.Terminal()
			if saved.Visible != nil {
				p.visible = *saved.Visible
			}
			if saved.Height > 0 {
				p.height = saved.Height
			}
			if saved.ActivePanel == state.PanelOutput {
				p.panel = state.PanelOutput
			}
		}
		p.height = clampHeight(p.height)
	}
	if ctx.WorkDir != p.workDir {
		// Queued lines were typed for the old folder.
		if n := p.session.DropQueued(); n > 0 {
			p.session.Write(fmt.Sprintf("dropped %d queued command(s)", n))
		}
		p.workDir = ctx.WorkDir
		if p.workDir != "" {
			p.session.Write("cwd: " + p.workDir)
		}
	}
	return nil
}

// Start has nothing to start; commands run on demand.
func (p *Plugin) Start() tea.Cmd { return nil }

// Stop kills the running command and saves pane state.
func (p *Plugin) Stop() {
	if p.proc != nil {
		p.proc.Kill()
		p.proc = nil
	}
	p.persist()
}

// Session exposes the input loop state.
func (p *Plugin) Session() *term.Session { return p.session }

// Visible reports whether the pane is shown.
func (p *Plugin) Visible() bool { return p.visible }

// ToggleVisible shows or hides the pane.
func (p *Plugin) ToggleVisible() {
	p.visible = !p.visible
	p.persist()
}

// PreferredHeight is the pane's outer height in rows.
func (p *Plugin) PreferredHeight() int { return p.height }

// Panel returns the active panel, state.PanelTerminal or state.PanelOutput.
func (p *Plugin) Panel() string { return p.panel }

func clampHeight(h int) int {
	return min(max(h, minHeight), maxHeight)
}

func (p *Plugin) persist() {
	if p.ctx == nil || p.ctx.State == nil {
		return
	}
	visible := p.visible
	ts := state.TerminalState{Visible: &visible, Height: p.height, ActivePanel: p.panel}
	if err := p.ctx.State.SetTerminal(ts); err != nil {
		p.ctx.Logger.Warn("terminal: save state failed", "err", err)
	}
}

// start spawns command for id in the workspace folder.
func (p *Plugin) start(id uint64, command string) tea.Cmd {
	runner := p.runner
	dir := p.workDir
	p.ctx.Logger.Debug("terminal: run", "id", id, "command", command, "dir", dir)
	return func() tea.Msg {
		proc, err := runner.Start(context.Background(), command, dir)
		return startedMsg{ID: id, Proc: proc, Err: err}
	}
}

// next waits for the next output line of proc, or its exit.
func next(id uint64, proc *term.Process) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-proc.Lines()
		if !ok {
			return exitedMsg{ID: id, Code: proc.ExitCode(), Err: proc.Err()}
		}
		return lineMsg{ID: id, Line: line, proc: proc}
	}
}

// Update handles messages.
func (p *Plugin) Update(m tea.Msg) (plugin.Plugin, tea.Cmd) {
	switch m := m.(type) {
	case startedMsg:
		if m.Err != nil {
			return p, p.exit(m.ID, -1, m.Err)
		}
		if id, _, ok := p.session.Running(); !ok || id != m.ID {
			m.Proc.Kill()
			return p, nil
		}
		p.proc, p.procID = m.Proc, m.ID
		return p, next(m.ID, m.Proc)

	case lineMsg:
		p.session.Output(m.ID, m.Line)
		return p, next(m.ID, m.proc)

	case exitedMsg:
		return p, p.exit(m.ID, m.Code, m.Err)

	case tea.KeyMsg:
		return p.handleKey(m)
	}
	return p, nil
}

// exit completes id and starts the next queued line, if any.
func (p *Plugin) exit(id uint64, code int, err error) tea.Cmd {
	if p.procID == id {
		p.proc, p.procID = nil, 0
	}
	if err != nil || code != 0 {
		p.ctx.Logger.Debug("terminal: command ended", "id", id, "code", code, "err", err)
	}
	nextID, command, ok := p.session.Exit(id, code, err)
	if !ok {
		return nil
	}
	return p.start(nextID, command)
}

// IsFocused returns whether the plugin is focused.
func (p *Plugin) IsFocused() bool { return p.focused }

// SetFocused sets the focus state.
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// ConsumesTextInput reports whether typed text goes to the input line.
func (p *Plugin) ConsumesTextInput() bool { return p.panel == state.PanelTerminal }

// FocusContext returns the current keymap context.
func (p *Plugin) FocusContext() string { return keymap.ContextTerminal }

// Commands returns the commands shown in the footer.
func (p *Plugin) Commands() []plugin.Command {
	cmds := []plugin.Command{
		{ID: "switch-panel", Name: "Panel", Context: keymap.ContextTerminal, Priority: 3},
		{ID: "clear", Name: "Clear", Context: keymap.ContextTerminal, Priority: 4},
		{ID: "grow", Name: "Grow", Context: keymap.ContextTerminal, Priority: 5},
		{ID: "shrink", Name: "Shrink", Context: keymap.ContextTerminal, Priority: 6},
	}
	if p.panel == state.PanelTerminal {
		cmds = append(cmds, plugin.Command{ID: "run", Name: "Run", Context: keymap.ContextTerminal, Priority: 1})
	}
	if p.session.Busy() {
		cmds = append(cmds, plugin.Command{ID: "kill", Name: "Kill", Context: keymap.ContextTerminal, Priority: 2})
	}
	return cmds
}
