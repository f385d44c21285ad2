package app

import (
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/config"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/msg"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/state"
)

// Pane plugin IDs the layout knows about.
const (
	explorerID = "explorer"
	editorID   = "editor"
	terminalID = "terminal"
)

// treeSizer is implemented by the explorer pane.
type treeSizer interface {
	TreeWidth() int
}

// bottomPane is implemented by the terminal pane.
type bottomPane interface {
	Visible() bool
	ToggleVisible()
	PreferredHeight() int
}

// Model is the root Bubble Tea model for the codeshell application.
type Model struct {
	// Configuration
	cfg   *config.Config
	store *state.Store

	// Plugin management
	registry     *plugin.Registry
	activePlugin int

	// Keymap
	keymap        *keymap.Registry
	activeContext string

	// UI state
	width, height   int
	showHelp        bool
	showFooter      bool
	showQuitConfirm bool
	picker          folderPicker

	// Status/toast messages
	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool

	ready bool

	currentVersion string
	workDir        string
}

// New creates the application model. workDir is the folder to open at
// startup, or "" for none.
func New(reg *plugin.Registry, km *keymap.Registry, cfg *config.Config, store *state.Store, currentVersion, workDir string) Model {
	m := Model{
		cfg:            cfg,
		store:          store,
		registry:       reg,
		keymap:         km,
		activeContext:  keymap.Global,
		showFooter:     cfg.UI.ShowFooter,
		currentVersion: currentVersion,
		workDir:        workDir,
	}
	// Start in the tree when a folder is open, otherwise in the editor's
	// empty state.
	start := explorerID
	if workDir == "" {
		start = editorID
	}
	for i, p := range reg.Plugins() {
		if p.ID() == start {
			m.activePlugin = i
		}
	}
	if p := m.ActivePlugin(); p != nil {
		p.SetFocused(true)
		m.activeContext = p.FocusContext()
	}
	return m
}

// Init initializes the model and returns initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	for _, cmd := range m.registry.Start() {
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	for id, reason := range m.registry.Unavailable() {
		cmds = append(cmds, msg.ShowToast(id+" unavailable: "+reason, 5*time.Second))
	}
	return tea.Batch(cmds...)
}

// ResolveWorkspace picks the folder to open at startup: the explicit flag
// value, else the persisted workspace if it still exists, else none.
func ResolveWorkspace(flagValue string, store *state.Store) string {
	if flagValue != "" {
		if abs, err := filepath.Abs(config.ExpandPath(flagValue)); err == nil {
			return abs
		}
		return flagValue
	}
	if store == nil {
		return ""
	}
	saved := store.WorkspacePath()
	if saved == "" {
		return ""
	}
	if info, err := os.Stat(saved); err != nil || !info.IsDir() {
		return ""
	}
	return saved
}

// ActivePlugin returns the currently focused pane.
func (m Model) ActivePlugin() plugin.Plugin {
	plugins := m.registry.Plugins()
	if len(plugins) == 0 {
		return nil
	}
	if m.activePlugin >= len(plugins) {
		return plugins[0]
	}
	return plugins[m.activePlugin]
}

// SetActivePlugin focuses the pane at idx.
func (m *Model) SetActivePlugin(idx int) tea.Cmd {
	plugins := m.registry.Plugins()
	if idx < 0 || idx >= len(plugins) {
		return nil
	}
	if current := m.ActivePlugin(); current != nil {
		current.SetFocused(false)
	}
	m.activePlugin = idx
	next := plugins[idx]
	next.SetFocused(true)
	m.activeContext = next.FocusContext()
	return func() tea.Msg { return plugin.FocusedMsg{} }
}

// focusable reports whether the pane at idx can take focus.
func (m Model) focusable(idx int) bool {
	p := m.registry.Plugins()[idx]
	if bp, ok := p.(bottomPane); ok {
		return bp.Visible()
	}
	return true
}

// cycleFocus moves focus by delta, skipping hidden panes.
func (m *Model) cycleFocus(delta int) tea.Cmd {
	plugins := m.registry.Plugins()
	n := len(plugins)
	if n == 0 {
		return nil
	}
	idx := m.activePlugin
	for range n {
		idx = ((idx+delta)%n + n) % n
		if m.focusable(idx) {
			return m.SetActivePlugin(idx)
		}
	}
	return nil
}

// FocusPluginByID focuses the pane with id.
func (m *Model) FocusPluginByID(id string) tea.Cmd {
	for i, p := range m.registry.Plugins() {
		if p.ID() == id {
			return m.SetActivePlugin(i)
		}
	}
	return nil
}

func (m Model) pluginByID(id string) plugin.Plugin {
	return m.registry.Get(id)
}

// terminalPane returns the bottom pane, if registered.
func (m Model) terminalPane() (bottomPane, bool) {
	bp, ok := m.pluginByID(terminalID).(bottomPane)
	return bp, ok
}

// toggleTerminal shows or hides the bottom pane, focusing it when shown.
func (m *Model) toggleTerminal() tea.Cmd {
	bp, ok := m.terminalPane()
	if !ok {
		return nil
	}
	bp.ToggleVisible()
	if bp.Visible() {
		return m.FocusPluginByID(terminalID)
	}
	if p := m.ActivePlugin(); p != nil && p.ID() == terminalID {
		return m.FocusPluginByID(editorID)
	}
	return nil
}

// switchWorkspace re-initializes every pane on path and persists it.
func (m *Model) switchWorkspace(path string) tea.Cmd {
	if path == m.workDir {
		return msg.ShowToast("Already open", 2*time.Second)
	}
	cmds := m.registry.Reinit(path)
	m.workDir = path
	if m.store != nil {
		if err := m.store.SetWorkspacePath(path); err != nil {
			m.registry.Context().Logger.Warn("app: persist workspace failed", "path", path, "err", err)
			cmds = append(cmds, msg.ShowError(err))
		}
	}
	m.registry.Context().Logger.Info("app: opened workspace", "path", path)
	cmds = append(cmds, m.FocusPluginByID(explorerID))
	cmds = append(cmds, msg.ShowToast("Opened "+filepath.Base(path), 2*time.Second))
	return tea.Batch(cmds...)
}

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(text string, duration time.Duration, isError bool) {
	if duration <= 0 {
		duration = 3 * time.Second
	}
	m.statusMsg = text
	m.statusExpiry = time.Now().Add(duration)
	m.statusIsError = isError
}

// ClearToast clears any expired toast message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

// updateContext sets activeContext from the open picker or the focused pane.
func (m *Model) updateContext() {
	if m.picker.active {
		m.activeContext = keymap.ContextPicker
		return
	}
	if p := m.ActivePlugin(); p != nil {
		m.activeContext = p.FocusContext()
	} else {
		m.activeContext = keymap.Global
	}
}
