// Package plugin defines the pane interface hosted by the app and the
// context shared between panes.
package plugin

import tea "github.com/charmbracelet/bubbletea"

// Plugin is one pane of the shell: explorer, editor or terminal.
type Plugin interface {
	ID() string
	Name() string
	Init(ctx *Context) error
	Start() tea.Cmd
	Stop()
	Update(msg tea.Msg) (Plugin, tea.Cmd)
	View(width, height int) string
	IsFocused() bool
	SetFocused(bool)
	Commands() []Command
	FocusContext() string
}

// TextInputConsumer is an optional capability for plugins that need
// printable keys delivered as typed text instead of being matched against
// single-key shortcuts.
type TextInputConsumer interface {
	ConsumesTextInput() bool
}

// ModalRenderer is implemented by plugins that can show a modal over the
// whole screen. ModalView returns "" when no modal is open.
type ModalRenderer interface {
	ModalView(width, height int) string
}

// Command describes a keymap command a plugin handles, for footer hints and
// the help overlay.
type Command struct {
	ID       string // keymap command id (e.g. "collapse-all")
	Name     string // short footer label
	Context  string // focus context it applies in
	Priority int    // footer order: 1=highest, 0=default (treated as 99)
}

// FocusedMsg is sent to a plugin when it gains focus.
type FocusedMsg struct{}

// EpochMessage is implemented by async messages that must be dropped once
// the workspace they were issued for has been replaced.
type EpochMessage interface {
	GetEpoch() uint64
}

// IsStale reports whether msg was issued under an earlier workspace epoch.
//
//	if plugin.IsStale(p.ctx, msg) { return p, nil }
func IsStale(ctx *Context, msg EpochMessage) bool {
	return ctx != nil && msg.GetEpoch() != ctx.Epoch
}
