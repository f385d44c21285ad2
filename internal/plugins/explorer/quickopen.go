package explorer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/msg"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/styles"
	"github.com/marcus/codeshell/internal/ui"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// QuickOpenMatch is one ranked quick-open candidate.
type QuickOpenMatch struct {
	Path    string // workspace-relative
	Matched []int  // byte offsets of matched characters
	Score   int
}

// openQuickOpen shows the prompt and builds the file index on first use.
func (p *Plugin) openQuickOpen() tea.Cmd {
	if p.ctx.WorkDir == "" {
		return msg.ShowToast("No folder opened", 2*time.Second)
	}
	ti := textinput.New()
	ti.Placeholder = "Search files"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()
	p.quickOpenInput = ti
	p.quickOpen = true
	p.quickOpenCursor = 0
	p.quickOpenError = ""

	if p.quickOpenIndex == nil || p.quickOpenIndex.Root != p.ctx.WorkDir {
		p.quickOpenIndex = nil
		p.quickOpenMatches = nil
		return tea.Batch(textinput.Blink, p.buildIndex())
	}
	p.updateQuickOpenMatches()
	return textinput.Blink
}

func (p *Plugin) closeQuickOpen() {
	p.quickOpen = false
	p.quickOpenMatches = nil
	p.quickOpenCursor = 0
	p.quickOpenInput.Blur()
}

// handleQuickOpenKey handles key input while the prompt is shown.
func (p *Plugin) handleQuickOpenKey(key tea.KeyMsg) (plugin.Plugin, tea.Cmd) {
	switch p.ctx.Lookup(key.String(), keymap.ContextQuickOpen) {
	case "cancel":
		p.closeQuickOpen()
		return p, nil
	case "select":
		if p.quickOpenCursor >= len(p.quickOpenMatches) {
			return p, nil
		}
		m := p.quickOpenMatches[p.quickOpenCursor]
		p.closeQuickOpen()
		abs := filepath.Join(p.ctx.WorkDir, m.Path)
		return p, msg.OpenFile(abs, filepath.Base(m.Path))
	case "cursor-up":
		if p.quickOpenCursor > 0 {
			p.quickOpenCursor--
		}
		return p, nil
	case "cursor-down":
		if p.quickOpenCursor < len(p.quickOpenMatches)-1 {
			p.quickOpenCursor++
		}
		return p, nil
	}

	before := p.quickOpenInput.Value()
	var cmd tea.Cmd
	p.quickOpenInput, cmd = p.quickOpenInput.Update(key)
	if p.quickOpenInput.Value() != before {
		p.quickOpenCursor = 0
		p.updateQuickOpenMatches()
	}
	return p, cmd
}

// updateQuickOpenMatches re-ranks the index against the current query.
func (p *Plugin) updateQuickOpenMatches() {
	if p.quickOpenIndex == nil {
		p.quickOpenMatches = nil
		return
	}
	p.quickOpenMatches = rankFiles(p.quickOpenIndex.Files, p.quickOpenInput.Value(), quickOpenMaxResults)
	if p.quickOpenCursor >= len(p.quickOpenMatches) {
		p.quickOpenCursor = 0
	}
}

// rankFiles returns up to limit files matching query, best first. An empty
// query lists files in index order.
func rankFiles(files []string, query string, limit int) []QuickOpenMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		n := min(limit, len(files))
		out := make([]QuickOpenMatch, n)
		for i := range n {
			out[i] = QuickOpenMatch{Path: files[i]}
		}
		return out
	}
	found := fuzzy.Find(query, files)
	if len(found) > limit {
		found = found[:limit]
	}
	out := make([]QuickOpenMatch, len(found))
	for i, m := range found {
		out[i] = QuickOpenMatch{Path: m.Str, Matched: m.MatchedIndexes, Score: m.Score}
	}
	return out
}

// renderQuickOpen draws the modal body.
func (p *Plugin) renderQuickOpen(width, height int) string {
	w := min(max(width-8, 30), 90)
	inner := w - 4
	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render("Quick Open"))
	b.WriteString("\n")
	p.quickOpenInput.Width = inner - 3
	b.WriteString(p.quickOpenInput.View())
	b.WriteString("\n")

	listHeight := max(height-10, 3)
	switch {
	case p.quickOpenLoading && p.quickOpenIndex == nil:
		b.WriteString(styles.Muted.Render("Indexing files…"))
	case p.quickOpenError != "" && p.quickOpenIndex == nil:
		b.WriteString(styles.ErrorText.Render(p.quickOpenError))
	case len(p.quickOpenMatches) == 0:
		b.WriteString(styles.Muted.Render("No matches"))
	default:
		start := 0
		if p.quickOpenCursor >= listHeight {
			start = p.quickOpenCursor - listHeight + 1
		}
		end := min(start+listHeight, len(p.quickOpenMatches))
		for i := start; i < end; i++ {
			if i > start {
				b.WriteString("\n")
			}
			b.WriteString(renderMatch(p.quickOpenMatches[i], inner, i == p.quickOpenCursor))
		}
		if p.quickOpenError != "" {
			b.WriteString("\n")
			b.WriteString(styles.Muted.Render(p.quickOpenError))
		}
	}
	return styles.ModalBox.Width(w).Render(b.String())
}

// renderMatch highlights matched characters of one candidate.
func renderMatch(m QuickOpenMatch, width int, selected bool) string {
	path := ui.TruncateLeft(m.Path, width)
	// Truncation shifts offsets; only highlight when the path fits.
	highlight := path == m.Path
	matched := make(map[int]bool, len(m.Matched))
	for _, i := range m.Matched {
		matched[i] = true
	}

	base := lipgloss.NewStyle()
	if selected {
		base = styles.ListItemSelected
	}
	var b strings.Builder
	for i, r := range path {
		s := string(r)
		if highlight && matched[i] {
			b.WriteString(styles.FuzzyMatchChar.Inherit(base).Render(s))
		} else {
			b.WriteString(base.Render(s))
		}
	}
	if pad := width - runewidth.StringWidth(path); pad > 0 {
		b.WriteString(base.Render(strings.Repeat(" ", pad)))
	}
	return b.String()
}
