// Package msg holds messages exchanged between panes and the app.
package msg

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastMsg displays a temporary message.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	IsError  bool // true for error toasts (red), false for success (green)
}

// ShowToast returns a command to show a toast message.
func ShowToast(message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  message,
			Duration: duration,
		}
	}
}

// ShowError returns a command to show err as a red toast.
func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  err.Error(),
			Duration: 5 * time.Second,
			IsError:  true,
		}
	}
}

// OpenFileMsg asks the editor to open Path as a tab.
type OpenFileMsg struct {
	Path string
	Name string
}

// OpenFile returns a command sending OpenFileMsg.
func OpenFile(path, name string) tea.Cmd {
	return func() tea.Msg {
		return OpenFileMsg{Path: path, Name: name}
	}
}

// ActiveTabMsg announces the editor's active tab path; "" when no tab is
// open.
type ActiveTabMsg struct {
	Path string
}

// QuickOpenMsg asks the explorer to show its quick-open prompt.
type QuickOpenMsg struct{}
