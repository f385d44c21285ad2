package app

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/styles"
	"github.com/marcus/codeshell/internal/ui"
)

// folderPicker is the open-folder modal: a directories-only file picker.
type folderPicker struct {
	active bool
	fp     filepicker.Model
}

// workspaceSelectedMsg carries the folder chosen in the picker.
type workspaceSelectedMsg struct {
	Path string
}

// open shows the picker rooted at dir, falling back to the home folder.
func (p *folderPicker) open(dir string, height int) tea.Cmd {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = home
		} else {
			dir = "."
		}
	}
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.Height = pickerHeight(height)
	p.fp = fp
	p.active = true
	return p.fp.Init()
}

func (p *folderPicker) close() {
	p.active = false
}

func pickerHeight(screen int) int {
	return max(screen-12, 5)
}

// handleKey handles input while the picker is open.
func (m Model) handlePickerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, _ := m.keymap.Lookup(key.String(), keymap.ContextPicker)
	switch cmd {
	case "cancel":
		m.picker.close()
		m.updateContext()
		return m, nil
	case "choose":
		dir := m.picker.fp.CurrentDirectory
		m.picker.close()
		return m, func() tea.Msg { return workspaceSelectedMsg{Path: dir} }
	}

	var fpCmd tea.Cmd
	m.picker.fp, fpCmd = m.picker.fp.Update(key)
	if ok, path := m.picker.fp.DidSelectFile(key); ok {
		m.picker.close()
		return m, func() tea.Msg { return workspaceSelectedMsg{Path: path} }
	}
	return m, fpCmd
}

// renderPicker draws the picker modal body.
func (m Model) renderPicker() string {
	width := min(max(m.width-10, 40), 100)
	inner := width - 4

	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render("Open Folder"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(ui.TruncateLeft(m.picker.fp.CurrentDirectory, inner)))
	b.WriteString("\n\n")
	b.WriteString(m.picker.fp.View())
	b.WriteString("\n")

	var hints []string
	for _, spec := range []struct{ cmd, label string }{
		{"choose", "open this folder"},
		{"cancel", "cancel"},
	} {
		if keys := m.keymap.KeysFor(spec.cmd, keymap.ContextPicker); len(keys) > 0 {
			hints = append(hints, styles.KeyHint.Render(keys[0])+" "+spec.label)
		}
	}
	hints = append(hints, styles.KeyHint.Render("enter")+" open selected")
	b.WriteString(strings.Join(hints, "  "))

	return styles.ModalBox.Width(width).Render(b.String())
}
