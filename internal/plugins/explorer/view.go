package explorer

import (
	"strings"

	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/styles"
	"github.com/marcus/codeshell/internal/ui"
	"github.com/marcus/codeshell/internal/workspace"
)

// View renders the explorer pane at the given outer size.
func (p *Plugin) View(width, height int) string {
	p.width = width
	p.height = height
	p.ensureCursorVisible()

	innerW := max(width-2, 1)
	innerH := max(height-2, 1)

	title := "EXPLORER"
	if root := p.ws.Root(); root != nil {
		title = strings.ToUpper(root.Name)
	}
	lines := []string{styles.Title.Render(ui.Truncate(title, innerW))}

	switch {
	case p.ctx == nil || p.ctx.WorkDir == "":
		lines = append(lines, styles.Muted.Render(ui.Truncate("No folder opened", innerW)))
		if key := p.keyFor("open-folder"); key != "" {
			lines = append(lines, styles.Subtle.Render(ui.Truncate("Press "+key+" to open one", innerW)))
		}
	case p.building && p.ws.Root() == nil:
		lines = append(lines, styles.TreePlaceholder.Render("Loading…"))
	case p.ws.Root() != nil && p.ws.Root().Load == workspace.LoadFailed:
		lines = append(lines, styles.ErrorText.Render(ui.Truncate("Folder could not be read", innerW)))
	default:
		end := min(p.scroll+innerH-1, len(p.rows))
		for i := p.scroll; i < end; i++ {
			lines = append(lines, p.renderRow(p.rows[i], i == p.cursor, innerW))
		}
	}

	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	return styles.RenderPanel(strings.Join(lines, "\n"), width, height, p.focused)
}

// ModalView renders quick open over the whole screen.
func (p *Plugin) ModalView(width, height int) string {
	if !p.quickOpen {
		return ""
	}
	return p.renderQuickOpen(width, height)
}

// renderRow renders one tree row: indent, expand marker, then the name.
func (p *Plugin) renderRow(row workspace.Row, selected bool, width int) string {
	indent := strings.Repeat("  ", row.Depth)

	var icon, label string
	style := styles.TreeFile
	switch row.Kind {
	case workspace.RowLoading:
		icon, label, style = "  ", "loading…", styles.TreePlaceholder
	case workspace.RowFailed:
		icon, label, style = "  ", "(unreadable)", styles.TreePlaceholder
	case workspace.RowEmpty:
		icon, label, style = "  ", "(empty)", styles.TreePlaceholder
	default:
		label = row.Node.Name
		switch {
		case row.Node.IsFolder() && row.Expanded:
			icon, style = "v ", styles.TreeDir
		case row.Node.IsFolder():
			icon, style = "> ", styles.TreeDir
		default:
			icon = "  "
		}
		if row.Active {
			style = styles.TreeActive
		}
	}

	text := ui.Truncate(indent+icon+label, width)
	if selected && p.focused {
		return styles.ListItemSelected.Render(ui.PadRight(text, width))
	}
	// Split the icon back off so it can be dimmed.
	prefix := indent + icon
	if len(text) < len(prefix) || !strings.HasPrefix(text, prefix) {
		return style.Render(text)
	}
	return indent + styles.TreeIcon.Render(icon) + style.Render(text[len(prefix):])
}

func (p *Plugin) keyFor(command string) string {
	if p.ctx == nil || p.ctx.Keymap == nil {
		return ""
	}
	keys := p.ctx.Keymap.KeysFor(command, keymap.Global)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
