package app

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/styles"
	"github.com/marcus/codeshell/internal/ui"
)

const (
	headerHeight = 1
	footerHeight = 1
	minWidth     = 60
	minHeight    = 16
)

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.width < minWidth || m.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.ErrorText.Render(msg))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent(m.width, m.contentHeight()))
	if m.showFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	bg := b.String()
	switch {
	case m.showQuitConfirm:
		return ui.Overlay(bg, m.renderQuitConfirm(), m.width, m.height)
	case m.picker.active:
		return ui.Overlay(bg, m.renderPicker(), m.width, m.height)
	case m.showHelp:
		return ui.Overlay(bg, styles.ModalBox.Render(m.buildHelpContent()), m.width, m.height)
	}
	if mr, ok := m.ActivePlugin().(plugin.ModalRenderer); ok {
		if modal := mr.ModalView(m.width, m.height); modal != "" {
			return ui.Overlay(bg, modal, m.width, m.height)
		}
	}
	return bg
}

// renderHeader draws the title bar: app name, workspace and version.
func (m Model) renderHeader() string {
	title := styles.BarTitle.Render(" codeshell")
	if m.workDir != "" {
		title += styles.Subtitle.Render(" / " + filepath.Base(m.workDir))
	}
	title += " "

	var right string
	if m.currentVersion != "" {
		right = styles.Muted.Render(m.currentVersion + " ")
	}

	spacing := max(m.width-lipgloss.Width(title)-lipgloss.Width(right), 0)
	header := title + strings.Repeat(" ", spacing) + right
	return styles.Header.Width(m.width).MaxWidth(m.width).Render(header)
}

// renderContent lays out the explorer beside the editor, with the terminal
// across the bottom when it is visible.
func (m Model) renderContent(width, height int) string {
	if height == 0 {
		return ""
	}
	explorer := m.pluginByID(explorerID)
	editor := m.pluginByID(editorID)
	terminal := m.pluginByID(terminalID)
	if explorer == nil && editor == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			styles.Muted.Render("No panes loaded"))
	}

	l := m.paneLayout(width, height)

	var top string
	switch {
	case explorer != nil && editor != nil:
		left := fit(explorer.View(l.treeWidth, l.topHeight), l.treeWidth, l.topHeight)
		right := fit(editor.View(width-l.treeWidth, l.topHeight), width-l.treeWidth, l.topHeight)
		top = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	case editor != nil:
		top = fit(editor.View(width, l.topHeight), width, l.topHeight)
	default:
		top = fit(explorer.View(width, l.topHeight), width, l.topHeight)
	}

	if l.termHeight == 0 {
		return top
	}
	bottom := fit(terminal.View(width, l.termHeight), width, l.termHeight)
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// fit pads or truncates content to exactly width x height. Height only pads
// short content; MaxHeight also truncates tall content.
func fit(content string, width, height int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).
		Height(height).MaxHeight(height).Render(content)
}

// renderFooter renders the bottom bar with key hints and status.
func (m Model) renderFooter() string {
	var status string
	if m.statusMsg != "" {
		toastStyle := styles.ToastSuccess
		if m.statusIsError {
			toastStyle = styles.ToastError
		}
		status = toastStyle.Render(m.statusMsg)
	}

	statusWidth := lipgloss.Width(status)
	hintsStr := renderHintLineTruncated(m.footerHints(), m.width-statusWidth-2)
	spacing := max(m.width-lipgloss.Width(hintsStr)-statusWidth, 0)

	footer := hintsStr + strings.Repeat(" ", spacing) + status
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(footer)
}

type footerHint struct {
	keys  string
	label string
}

func (m Model) footerHints() []footerHint {
	// Pane hints first; they are more relevant than global ones.
	var hints []footerHint
	if p := m.ActivePlugin(); p != nil {
		hints = m.pluginFooterHints(p, m.activeContext)
	}
	return append(hints, m.globalFooterHints()...)
}

func (m Model) globalFooterHints() []footerHint {
	keysByCmd := bindingKeysByCommand(m.keymap.BindingsForContext(keymap.Global))

	specs := []struct {
		id    string
		label string
	}{
		{id: "quick-open", label: "find"},
		{id: "open-folder", label: "folder"},
		{id: "toggle-terminal", label: "terminal"},
		{id: "toggle-help", label: "help"},
		{id: "quit", label: "quit"},
	}

	var hints []footerHint
	for _, spec := range specs {
		keys := keysByCmd[spec.id]
		if len(keys) == 0 {
			continue
		}
		hints = append(hints, footerHint{keys: keys[0], label: spec.label})
	}
	return hints
}

func (m Model) pluginFooterHints(p plugin.Plugin, context string) []footerHint {
	if context == "" || context == keymap.Global {
		return nil
	}

	keysByCmd := bindingKeysByCommand(m.keymap.BindingsForContext(context))

	type cmdWithPriority struct {
		cmd      plugin.Command
		keys     []string
		priority int
	}

	var cmds []cmdWithPriority
	for _, cmd := range p.Commands() {
		if cmd.Context != context {
			continue
		}
		keys := keysByCmd[cmd.ID]
		if len(keys) == 0 {
			continue
		}
		priority := cmd.Priority
		if priority == 0 {
			priority = 99
		}
		cmds = append(cmds, cmdWithPriority{cmd, keys, priority})
	}

	sort.SliceStable(cmds, func(i, j int) bool {
		return cmds[i].priority < cmds[j].priority
	})

	var hints []footerHint
	for _, c := range cmds {
		hints = append(hints, footerHint{
			keys:  formatBindingKeys(c.keys),
			label: c.cmd.Name,
		})
	}
	return hints
}

func bindingKeysByCommand(bindings []keymap.Binding) map[string][]string {
	keysByCmd := make(map[string][]string, len(bindings))
	for _, b := range bindings {
		keysByCmd[b.Command] = append(keysByCmd[b.Command], b.Key)
	}
	return keysByCmd
}

// renderHintLineTruncated renders hints but stops adding when maxWidth is exceeded.
func renderHintLineTruncated(hints []footerHint, maxWidth int) string {
	if len(hints) == 0 || maxWidth <= 0 {
		return ""
	}
	var result string
	for _, hint := range hints {
		if hint.keys == "" || hint.label == "" {
			continue
		}
		part := fmt.Sprintf("%s %s", styles.KeyHint.Render(hint.keys), hint.label)
		candidate := part
		if result != "" {
			candidate = result + "  " + part
		}
		if lipgloss.Width(candidate) > maxWidth {
			break
		}
		result = candidate
	}
	return result
}

// renderQuitConfirm draws the quit confirmation modal.
func (m Model) renderQuitConfirm() string {
	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render("Quit codeshell?"))
	b.WriteString("\n")
	b.WriteString("Running commands will be stopped.")
	b.WriteString("\n\n")
	b.WriteString(styles.ButtonDangerFocused.Render(" Quit "))
	b.WriteString("  ")
	b.WriteString(styles.Button.Render(" Cancel "))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render("y/enter quit • n/esc cancel"))
	return styles.ModalBox.Render(b.String())
}

// buildHelpContent creates the help modal content.
func (m Model) buildHelpContent() string {
	var b strings.Builder

	b.WriteString(styles.ModalTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")

	b.WriteString(styles.Title.Render("Global"))
	b.WriteString("\n")
	m.renderBindingSection(&b, keymap.Global)
	b.WriteString("\n")

	if p := m.ActivePlugin(); p != nil {
		ctx := p.FocusContext()
		if ctx != keymap.Global && ctx != "" && len(m.keymap.BindingsForContext(ctx)) > 0 {
			b.WriteString(styles.Title.Render(p.Name()))
			b.WriteString("\n")
			m.renderBindingSection(&b, ctx)
			b.WriteString("\n")
		}
	}

	b.WriteString(styles.Subtle.Render("Press esc to close"))
	return b.String()
}

// renderBindingSection renders bindings for a context, one line per command.
func (m Model) renderBindingSection(b *strings.Builder, context string) {
	bindings := m.keymap.BindingsForContext(context)
	keysByCmd := bindingKeysByCommand(bindings)

	seen := make(map[string]bool)
	for _, binding := range bindings {
		if seen[binding.Command] {
			continue
		}
		seen[binding.Command] = true

		padded := fmt.Sprintf("%-14s", formatBindingKeys(keysByCmd[binding.Command]))
		fmt.Fprintf(b, "  %s %s\n", styles.Muted.Render(padded), formatCommandName(binding.Command))
	}
}

// formatBindingKeys formats up to two keys into a display string.
func formatBindingKeys(keys []string) string {
	if len(keys) > 2 {
		keys = keys[:2]
	}
	return strings.Join(keys, ", ")
}

// formatCommandName converts a command ID to a display name.
func formatCommandName(cmd string) string {
	return strings.ReplaceAll(cmd, "-", " ")
}
