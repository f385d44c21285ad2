package keymap

// Focus contexts.
const (
	ContextExplorer  = "explorer"
	ContextQuickOpen = "quick-open"
	ContextEditor    = "editor"
	ContextTerminal  = "terminal"
	ContextPicker    = "folder-picker"
)

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "ctrl+c", Command: "quit", Context: Global},
		{Key: "ctrl+q", Command: "quit", Context: Global},
		{Key: "tab", Command: "focus-next", Context: Global},
		{Key: "shift+tab", Command: "focus-prev", Context: Global},
		{Key: "ctrl+o", Command: "open-folder", Context: Global},
		{Key: "ctrl+t", Command: "toggle-terminal", Context: Global},
		{Key: "ctrl+p", Command: "quick-open", Context: Global},
		{Key: "ctrl+e", Command: "focus-explorer", Context: Global},
		{Key: "ctrl+g", Command: "toggle-help", Context: Global},

		// Explorer tree
		{Key: "j", Command: "cursor-down", Context: ContextExplorer},
		{Key: "down", Command: "cursor-down", Context: ContextExplorer},
		{Key: "k", Command: "cursor-up", Context: ContextExplorer},
		{Key: "up", Command: "cursor-up", Context: ContextExplorer},
		{Key: "g", Command: "cursor-top", Context: ContextExplorer},
		{Key: "home", Command: "cursor-top", Context: ContextExplorer},
		{Key: "G", Command: "cursor-bottom", Context: ContextExplorer},
		{Key: "end", Command: "cursor-bottom", Context: ContextExplorer},
		{Key: "ctrl+d", Command: "page-down", Context: ContextExplorer},
		{Key: "pgdown", Command: "page-down", Context: ContextExplorer},
		{Key: "ctrl+u", Command: "page-up", Context: ContextExplorer},
		{Key: "pgup", Command: "page-up", Context: ContextExplorer},
		{Key: "enter", Command: "open", Context: ContextExplorer},
		{Key: "l", Command: "expand", Context: ContextExplorer},
		{Key: "right", Command: "expand", Context: ContextExplorer},
		{Key: "h", Command: "collapse", Context: ContextExplorer},
		{Key: "left", Command: "collapse", Context: ContextExplorer},
		{Key: "C", Command: "collapse-all", Context: ContextExplorer},
		{Key: "r", Command: "refresh", Context: ContextExplorer},
		{Key: "y", Command: "yank-path", Context: ContextExplorer},
		{Key: ">", Command: "widen", Context: ContextExplorer},
		{Key: "<", Command: "narrow", Context: ContextExplorer},
		{Key: "?", Command: "toggle-help", Context: ContextExplorer},

		// Quick open
		{Key: "esc", Command: "cancel", Context: ContextQuickOpen},
		{Key: "enter", Command: "select", Context: ContextQuickOpen},
		{Key: "up", Command: "cursor-up", Context: ContextQuickOpen},
		{Key: "down", Command: "cursor-down", Context: ContextQuickOpen},

		// Editor
		{Key: "j", Command: "scroll-down", Context: ContextEditor},
		{Key: "down", Command: "scroll-down", Context: ContextEditor},
		{Key: "k", Command: "scroll-up", Context: ContextEditor},
		{Key: "up", Command: "scroll-up", Context: ContextEditor},
		{Key: "ctrl+d", Command: "page-down", Context: ContextEditor},
		{Key: "pgdown", Command: "page-down", Context: ContextEditor},
		{Key: "ctrl+u", Command: "page-up", Context: ContextEditor},
		{Key: "pgup", Command: "page-up", Context: ContextEditor},
		{Key: "g", Command: "scroll-top", Context: ContextEditor},
		{Key: "G", Command: "scroll-bottom", Context: ContextEditor},
		{Key: "]", Command: "next-tab", Context: ContextEditor},
		{Key: "[", Command: "prev-tab", Context: ContextEditor},
		{Key: "x", Command: "close-tab", Context: ContextEditor},
		{Key: "ctrl+w", Command: "close-tab", Context: ContextEditor},
		{Key: "m", Command: "toggle-markdown", Context: ContextEditor},
		{Key: "R", Command: "reload", Context: ContextEditor},
		{Key: "y", Command: "yank-path", Context: ContextEditor},
		{Key: "?", Command: "toggle-help", Context: ContextEditor},

		// Terminal (the input line consumes printable keys)
		{Key: "enter", Command: "run", Context: ContextTerminal},
		{Key: "ctrl+x", Command: "kill", Context: ContextTerminal},
		{Key: "ctrl+l", Command: "clear", Context: ContextTerminal},
		{Key: "ctrl+n", Command: "switch-panel", Context: ContextTerminal},
		{Key: "pgup", Command: "scroll-up", Context: ContextTerminal},
		{Key: "pgdown", Command: "scroll-down", Context: ContextTerminal},
		{Key: "ctrl+up", Command: "grow", Context: ContextTerminal},
		{Key: "ctrl+down", Command: "shrink", Context: ContextTerminal},
		{Key: "up", Command: "history-prev", Context: ContextTerminal},
		{Key: "down", Command: "history-next", Context: ContextTerminal},

		// Folder picker
		{Key: "esc", Command: "cancel", Context: ContextPicker},
		{Key: "o", Command: "choose", Context: ContextPicker},
		{Key: "ctrl+s", Command: "choose", Context: ContextPicker},
	}
}
