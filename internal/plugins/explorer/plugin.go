// Package explorer is the file-tree pane: it builds the workspace tree,
// expands folders lazily and sends file opens to the editor.
package explorer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/fsys"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/msg"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/state"
	"github.com/marcus/codeshell/internal/workspace"
)

const (
	pluginID   = "explorer"
	pluginName = "Explorer"

	// Quick open limits
	quickOpenMaxFiles   = 50000
	quickOpenMaxResults = 50
	quickOpenTimeout    = 2 * time.Second
)

// Message types
type (
	// TreeBuiltMsg carries a freshly built tree for the workspace at Path.
	TreeBuiltMsg struct {
		Epoch uint64
		Path  string
		Root  *workspace.FileNode
		Errs  []error
	}

	// ChildrenLoadedMsg carries the result of one lazy folder read.
	ChildrenLoadedMsg struct {
		Req      workspace.Request
		Children []*workspace.FileNode
		Err      error
	}

	// IndexBuiltMsg carries the quick-open file index.
	IndexBuiltMsg struct {
		Epoch uint64
		Index *fsys.Index
		Err   error
	}
)

// GetEpoch implements plugin.EpochMessage.
func (m TreeBuiltMsg) GetEpoch() uint64 { return m.Epoch }

// GetEpoch implements plugin.EpochMessage.
func (m IndexBuiltMsg) GetEpoch() uint64 { return m.Epoch }

// Plugin implements the explorer pane.
type Plugin struct {
	ctx     *plugin.Context
	lister  fsys.DirLister
	builder *workspace.Builder
	ws      *workspace.State
	focused bool

	building bool
	// Expanded set carried across a refresh; nil when none is pending.
	carryExpanded []string
	rows          []workspace.Row
	cursor        int
	scroll        int

	width, height int
	treeWidth     int

	// Quick open state
	quickOpen        bool
	quickOpenInput   textinput.Model
	quickOpenIndex   *fsys.Index
	quickOpenLoading bool
	quickOpenMatches []QuickOpenMatch
	quickOpenCursor  int
	quickOpenError   string
}

// New creates an explorer reading the local disk.
func New() *Plugin {
	return &Plugin{}
}

// NewWithLister creates an explorer reading directories through l.
func NewWithLister(l fsys.DirLister) *Plugin {
	return &Plugin{lister: l}
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return pluginID }

// Name returns the plugin display name.
func (p *Plugin) Name() string { return pluginName }

// Init initializes the plugin with context.
func (p *Plugin) Init(ctx *plugin.Context) error {
	p.ctx = ctx
	if p.lister == nil {
		p.lister = fsys.NewDisk(ctx.Config.Tree.HideSystemFiles, ctx.Config.Editor.MaxFileSize)
	}
	p.builder = workspace.NewBuilder(p.lister, ctx.Logger)
	if p.ws == nil {
		p.ws = workspace.NewState()
	}
	p.ws.Clear()
	p.carryExpanded = nil
	p.rows = nil
	p.cursor, p.scroll = 0, 0
	p.closeQuickOpen()
	p.quickOpenIndex = nil

	if p.treeWidth == 0 {
		p.treeWidth = ctx.Config.UI.TreeWidth
		if ctx.State != nil {
			if w := ctx.State.Explorer().TreeWidth; w > 0 {
				p.treeWidth = w
			}
		}
	}
	return nil
}

// Start builds the tree for the current workspace, if one is open.
func (p *Plugin) Start() tea.Cmd {
	if p.ctx.WorkDir == "" {
		return nil
	}
	return p.build(p.ctx.WorkDir)
}

// Stop persists the explorer view state.
func (p *Plugin) Stop() {
	p.persist()
}

// Workspace exposes the tree state.
func (p *Plugin) Workspace() *workspace.State { return p.ws }

// TreeWidth returns the preferred pane width in cells.
func (p *Plugin) TreeWidth() int { return p.treeWidth }

// build reads the tree off the update loop.
func (p *Plugin) build(root string) tea.Cmd {
	p.building = true
	epoch := p.ctx.Epoch
	builder := p.builder
	maxDepth := p.ctx.Config.Tree.MaxDepth
	return func() tea.Msg {
		node, errs := builder.Build(root, filepath.Base(root), maxDepth)
		return TreeBuiltMsg{Epoch: epoch, Path: root, Root: node, Errs: errs}
	}
}

// expand reads one folder's children for req.
func (p *Plugin) expand(req workspace.Request) tea.Cmd {
	builder := p.builder
	return func() tea.Msg {
		children, err := builder.ExpandChildren(req.Path)
		return ChildrenLoadedMsg{Req: req, Children: children, Err: err}
	}
}

func (p *Plugin) expandAll(reqs []workspace.Request) tea.Cmd {
	if len(reqs) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		cmds = append(cmds, p.expand(req))
	}
	return tea.Batch(cmds...)
}

// buildIndex walks the workspace for quick open.
func (p *Plugin) buildIndex() tea.Cmd {
	p.quickOpenLoading = true
	epoch := p.ctx.Epoch
	root := p.ctx.WorkDir
	hide := p.ctx.Config.Tree.HideSystemFiles
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickOpenTimeout)
		defer cancel()
		idx, err := fsys.BuildIndex(ctx, root, quickOpenMaxFiles, hide)
		return IndexBuiltMsg{Epoch: epoch, Index: idx, Err: err}
	}
}

// Update handles messages.
func (p *Plugin) Update(m tea.Msg) (plugin.Plugin, tea.Cmd) {
	switch m := m.(type) {
	case TreeBuiltMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		return p, p.applyTree(m)

	case ChildrenLoadedMsg:
		if err := p.ws.Resolve(m.Req, m.Children, m.Err); err != nil {
			// Superseded or protocol-violating result; the tree is unchanged.
			p.ctx.Logger.Debug("explorer: dropped folder result", "path", m.Req.Path, "err", err)
			return p, nil
		}
		p.refreshRows()
		return p, p.expandAll(p.ws.PendingLoads())

	case IndexBuiltMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		p.quickOpenLoading = false
		p.quickOpenIndex = m.Index
		p.quickOpenError = ""
		if m.Err != nil {
			p.quickOpenError = m.Err.Error()
		} else if m.Index != nil && m.Index.Truncated {
			p.quickOpenError = "file list truncated"
		}
		p.updateQuickOpenMatches()
		return p, nil

	case msg.ActiveTabMsg:
		p.ws.SetActiveTab(m.Path)
		p.ws.ExpandAncestors(m.Path)
		p.refreshRows()
		if i := workspace.IndexOf(p.rows, m.Path); i >= 0 {
			p.cursor = i
			p.ensureCursorVisible()
		}
		return p, p.expandAll(p.ws.PendingLoads())

	case msg.QuickOpenMsg:
		return p, p.openQuickOpen()

	case tea.KeyMsg:
		if p.quickOpen {
			return p.handleQuickOpenKey(m)
		}
		return p.handleKey(m)
	}
	return p, nil
}

// applyTree installs a built tree and starts loading any expanded folder
// still unread.
func (p *Plugin) applyTree(m TreeBuiltMsg) tea.Cmd {
	p.building = false
	active := p.ws.ActiveTabID()
	p.ws.SetRoot(m.Root, m.Path)
	p.ws.SetActiveTab(active)

	restored := false
	if p.carryExpanded != nil {
		p.ws.RestoreExpanded(p.carryExpanded)
		p.carryExpanded = nil
		restored = true
	} else if p.ctx.State != nil && p.ctx.State.WorkspacePath() == m.Path {
		saved := p.ctx.State.Explorer()
		if len(saved.ExpandedDirs) > 0 {
			p.ws.RestoreExpanded(saved.ExpandedDirs)
			restored = true
		}
		p.refreshRows()
		if i := workspace.IndexOf(p.rows, saved.SelectedPath); i >= 0 {
			p.cursor = i
		}
	}
	if !restored {
		p.ws.ExpandToDepth(p.ctx.Config.Tree.AutoExpandDepth)
	}
	p.refreshRows()

	var cmds []tea.Cmd
	cmds = append(cmds, p.expandAll(p.ws.PendingLoads()))
	if len(m.Errs) > 0 {
		p.ctx.Logger.Warn("explorer: tree built with errors", "root", m.Path, "count", len(m.Errs))
		if m.Root != nil && m.Root.Load == workspace.LoadFailed {
			cmds = append(cmds, msg.ShowError(m.Errs[0]))
		}
	}
	return tea.Batch(cmds...)
}

// refreshRows recomputes visible rows and keeps the cursor in range.
func (p *Plugin) refreshRows() {
	var selected string
	if p.cursor >= 0 && p.cursor < len(p.rows) && p.rows[p.cursor].Kind == workspace.RowNode {
		selected = p.rows[p.cursor].Node.Path
	}
	p.rows = p.ws.Rows()
	if selected != "" {
		if i := workspace.IndexOf(p.rows, selected); i >= 0 {
			p.cursor = i
		}
	}
	p.clampCursor()
}

func (p *Plugin) clampCursor() {
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.ensureCursorVisible()
}

// persist saves expanded folders, selection and width for this workspace.
func (p *Plugin) persist() {
	if p.ctx == nil || p.ctx.State == nil || p.ws.WorkspacePath() == "" {
		return
	}
	if p.ctx.State.WorkspacePath() != p.ws.WorkspacePath() {
		return
	}
	es := state.ExplorerState{
		ExpandedDirs: p.ws.ExpandedPaths(),
		TreeWidth:    p.treeWidth,
	}
	if row, ok := p.selected(); ok {
		es.SelectedPath = row.Node.Path
	}
	if err := p.ctx.State.SetExplorer(es); err != nil {
		p.ctx.Logger.Warn("explorer: save state failed", "err", err)
	}
}

func (p *Plugin) selected() (workspace.Row, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return workspace.Row{}, false
	}
	return p.rows[p.cursor], true
}

// IsFocused returns whether the plugin is focused.
func (p *Plugin) IsFocused() bool { return p.focused }

// SetFocused sets the focus state.
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// ConsumesTextInput reports whether typed text goes to the quick-open input.
func (p *Plugin) ConsumesTextInput() bool { return p.quickOpen }

// FocusContext returns the current keymap context.
func (p *Plugin) FocusContext() string {
	if p.quickOpen {
		return keymap.ContextQuickOpen
	}
	return keymap.ContextExplorer
}

// Commands returns the commands shown in the footer.
func (p *Plugin) Commands() []plugin.Command {
	if p.quickOpen {
		return []plugin.Command{
			{ID: "select", Name: "Open", Context: keymap.ContextQuickOpen, Priority: 1},
			{ID: "cancel", Name: "Cancel", Context: keymap.ContextQuickOpen, Priority: 2},
		}
	}
	return []plugin.Command{
		{ID: "open", Name: "Open", Context: keymap.ContextExplorer, Priority: 1},
		{ID: "collapse", Name: "Collapse", Context: keymap.ContextExplorer, Priority: 2},
		{ID: "collapse-all", Name: "Collapse all", Context: keymap.ContextExplorer, Priority: 3},
		{ID: "yank-path", Name: "Yank", Context: keymap.ContextExplorer, Priority: 4},
		{ID: "refresh", Name: "Refresh", Context: keymap.ContextExplorer, Priority: 5},
		{ID: "widen", Name: "Wider", Context: keymap.ContextExplorer},
		{ID: "narrow", Name: "Narrower", Context: keymap.ContextExplorer},
	}
}
