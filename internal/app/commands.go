package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent on each clock tick; it expires toasts.
type TickMsg time.Time

// tickCmd returns a command that ticks every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
