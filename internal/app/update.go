package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/msg"
	"github.com/marcus/codeshell/internal/plugin"
)

// Update handles all messages and returns the updated model and commands.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		if m.picker.active {
			m.picker.fp.Height = pickerHeight(m.height)
		}
		return m, nil

	case TickMsg:
		m.ClearToast()
		return m, tickCmd()

	case msg.ToastMsg:
		m.ShowToast(message.Message, message.Duration, message.IsError)
		return m, nil

	case workspaceSelectedMsg:
		cmd := m.switchWorkspace(message.Path)
		m.updateContext()
		return m, cmd

	case msg.OpenFileMsg:
		// Opening a file moves focus to the editor.
		cmds = append(cmds, m.FocusPluginByID(editorID))

	case tea.MouseMsg:
		return m.handleMouse(message)
	}

	// The picker's directory reads come back as its own messages.
	if m.picker.active {
		var cmd tea.Cmd
		m.picker.fp, cmd = m.picker.fp.Update(message)
		cmds = append(cmds, cmd)
	}

	// Forward other messages to all panes so async results reach their
	// owner regardless of focus.
	plugins := m.registry.Plugins()
	for i, p := range plugins {
		newPlugin, cmd := p.Update(message)
		plugins[i] = newPlugin
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	m.updateContext()

	return m, tea.Batch(cmds...)
}

// hasModal reports whether an app-level modal owns the keyboard.
func (m Model) hasModal() bool {
	return m.showQuitConfirm || m.showHelp || m.picker.active
}

// paneModalOpen reports whether the focused pane is showing a modal.
func (m Model) paneModalOpen() bool {
	if mr, ok := m.ActivePlugin().(plugin.ModalRenderer); ok {
		return mr.ModalView(m.width, m.height) != ""
	}
	return false
}

// handleKeyMsg processes keyboard input.
func (m Model) handleKeyMsg(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showQuitConfirm {
		switch key.String() {
		case "y", "enter":
			m.registry.Stop()
			return m, tea.Quit
		case "n", "esc":
			m.showQuitConfirm = false
		}
		return m, nil
	}

	globalCmd, _ := m.keymap.Lookup(key.String(), keymap.Global)
	if globalCmd == "quit" {
		m.showQuitConfirm = true
		return m, nil
	}

	if m.picker.active {
		return m.handlePickerKey(key)
	}

	if m.showHelp {
		if key.Type == tea.KeyEsc || globalCmd == "toggle-help" ||
			m.lookup(key) == "toggle-help" {
			m.showHelp = false
		}
		return m, nil
	}

	// Typed text and pane modals go straight to the pane.
	textInput := false
	if tc, ok := m.ActivePlugin().(plugin.TextInputConsumer); ok && tc.ConsumesTextInput() {
		textInput = key.Type == tea.KeyRunes || key.Type == tea.KeySpace
	}
	if !textInput && !m.paneModalOpen() {
		if cmd, handled := m.handleGlobal(globalCmd); handled {
			return m, cmd
		}
		if !m.consumesText() && m.lookup(key) == "toggle-help" {
			m.showHelp = true
			return m, nil
		}
	}

	if p := m.ActivePlugin(); p != nil {
		newPlugin, cmd := p.Update(key)
		plugins := m.registry.Plugins()
		if m.activePlugin < len(plugins) {
			plugins[m.activePlugin] = newPlugin
		}
		m.updateContext()
		return m, cmd
	}
	return m, nil
}

// handleGlobal runs a global command.
func (m *Model) handleGlobal(command string) (tea.Cmd, bool) {
	switch command {
	case "focus-next":
		return m.cycleFocus(1), true
	case "focus-prev":
		return m.cycleFocus(-1), true
	case "focus-explorer":
		return m.FocusPluginByID(explorerID), true
	case "toggle-terminal":
		return m.toggleTerminal(), true
	case "open-folder":
		m.activeContext = keymap.ContextPicker
		return m.picker.open(m.workDir, m.height), true
	case "quick-open":
		cmd := m.FocusPluginByID(explorerID)
		p := m.pluginByID(explorerID)
		if p == nil {
			return nil, true
		}
		_, qcmd := p.Update(msg.QuickOpenMsg{})
		m.updateContext()
		return tea.Batch(cmd, qcmd), true
	case "toggle-help":
		m.showHelp = true
		return nil, true
	}
	return nil, false
}

// lookup resolves key in the focused pane's context.
func (m Model) lookup(key tea.KeyMsg) string {
	cmd, _ := m.keymap.Lookup(key.String(), m.activeContext)
	return cmd
}

func (m Model) consumesText() bool {
	tc, ok := m.ActivePlugin().(plugin.TextInputConsumer)
	return ok && tc.ConsumesTextInput()
}
