// Package styles holds the lipgloss styles shared by every pane.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#3B82F6") // Blue
	Accent    = lipgloss.Color("#F59E0B") // Amber

	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")

	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")
	TextSubtle    = lipgloss.Color("#4B5563")

	BgSecondary = lipgloss.Color("#1F2937")
	BgTertiary  = lipgloss.Color("#374151")

	BorderNormal = lipgloss.Color("#374151")
	BorderActive = lipgloss.Color("#7C3AED")
)

// Panel styles
var (
	PanelActive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderActive).
			Padding(0, 1)

	PanelInactive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderNormal).
			Padding(0, 1)
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextSecondary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Subtle = lipgloss.NewStyle().
		Foreground(TextSubtle)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)
)

// Toasts
var (
	ToastSuccess = lipgloss.NewStyle().
			Background(Success).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Padding(0, 1)

	ToastError = lipgloss.NewStyle().
			Background(Error).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

// Explorer tree
var (
	TreeDir = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	TreeFile = lipgloss.NewStyle().
			Foreground(TextPrimary)

	TreeIcon = lipgloss.NewStyle().
			Foreground(TextMuted)

	// Node whose file is the active editor tab
	TreeActive = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	TreePlaceholder = lipgloss.NewStyle().
			Foreground(TextSubtle).
			Italic(true)

	ListItemSelected = lipgloss.NewStyle().
				Foreground(TextPrimary).
				Background(BgTertiary)

	FuzzyMatchChar = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// Editor tab bar and gutter
var (
	TabActive = lipgloss.NewStyle().
			Foreground(TextPrimary).
			Background(Primary).
			Bold(true).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(BgTertiary).
			Padding(0, 1)

	TabChanged = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	LineNumber = lipgloss.NewStyle().
			Foreground(TextMuted).
			Width(5).
			AlignHorizontal(lipgloss.Right)
)

// Terminal pane
var (
	TermPrompt = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	TermStdout = lipgloss.NewStyle().
			Foreground(TextPrimary)

	TermStderr = lipgloss.NewStyle().
			Foreground(Error)

	TermSystem = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// Header, footer and modals
var (
	Header = lipgloss.NewStyle().
		Background(BgSecondary)

	Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgSecondary)

	BarTitle = lipgloss.NewStyle().
			Foreground(TextPrimary).
			Bold(true)

	ModalBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Background(BgSecondary).
			Padding(1, 2)

	ModalTitle = lipgloss.NewStyle().
			Foreground(TextPrimary).
			Bold(true).
			MarginBottom(1)

	Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(BgTertiary).
		Padding(0, 2)

	ButtonDangerFocused = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#DC2626")).
				Padding(0, 2).
				Bold(true)
)

// RenderPanel draws content inside a rounded border sized to width x height
// (outer dimensions).
func RenderPanel(content string, width, height int, active bool) string {
	style := PanelInactive
	if active {
		style = PanelActive
	}
	innerW := width - 2
	innerH := height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	return style.
		Width(innerW).
		Height(innerH).
		MaxHeight(height).
		Render(content)
}
