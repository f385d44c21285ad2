// Package editor is the read-only file viewer: a tab bar over a scrolling,
// syntax-highlighted view of the active file.
package editor

import (
	"errors"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/fsys"
	"github.com/marcus/codeshell/internal/highlight"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/msg"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/tabs"
	"github.com/marcus/codeshell/internal/watch"
)

const (
	pluginID   = "editor"
	pluginName = "Editor"
)

// Message types
type (
	// FileReadMsg carries the read issued for an open request.
	FileReadMsg struct {
		Path    string
		Name    string
		Content string
		Err     error
	}

	// ReloadedMsg carries a fresh read of an already-open tab.
	ReloadedMsg struct {
		Path    string
		Content string
		Err     error
	}

	// WatchEventMsg reports that an open file changed on disk.
	WatchEventMsg struct {
		Event   watch.Event
		watcher *watch.Watcher
	}

	// watchStoppedMsg ends a listener whose watcher was closed.
	watchStoppedMsg struct{}
)

// Plugin implements the editor pane. Tabs survive workspace switches.
type Plugin struct {
	ctx      *plugin.Context
	reader   fsys.FileReader
	tabs     *tabs.Manager
	renderer *highlight.Renderer
	watcher  *watch.Watcher
	focused  bool

	vp            viewport.Model
	width, height int

	// Markdown tabs show rendered output unless toggled to source.
	renderMarkdown bool
	// Key of the content currently loaded in vp.
	shown         viewKey
	restoreScroll bool
}

type viewKey struct {
	path        string
	fingerprint uint64
	markdown    bool
	width       int
}

// New creates an editor reading the local disk.
func New() *Plugin {
	return &Plugin{}
}

// NewWithReader creates an editor reading files through r.
func NewWithReader(r fsys.FileReader) *Plugin {
	return &Plugin{reader: r}
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return pluginID }

// Name returns the plugin display name.
func (p *Plugin) Name() string { return pluginName }

// Init initializes the plugin. Open tabs are kept across re-initialization.
func (p *Plugin) Init(ctx *plugin.Context) error {
	first := p.ctx == nil
	p.ctx = ctx
	if p.reader == nil {
		p.reader = fsys.NewDisk(ctx.Config.Tree.HideSystemFiles, ctx.Config.Editor.MaxFileSize)
	}
	if p.tabs == nil {
		p.tabs = tabs.NewManager(p.reader)
	}
	if p.renderer == nil {
		p.renderer = highlight.NewRenderer(ctx.Config.Editor.SyntaxTheme, ctx.Config.Editor.MarkdownStyle)
	}
	if first {
		p.renderMarkdown = ctx.Config.Editor.RenderMarkdown
		p.vp = viewport.New(0, 0)
	}
	return nil
}

// Start starts watching open tabs for changes on disk.
func (p *Plugin) Start() tea.Cmd {
	if p.watcher != nil {
		return nil
	}
	w, err := watch.New(p.ctx.Logger)
	if err != nil {
		p.ctx.Logger.Warn("editor: file watching disabled", "err", err)
		return nil
	}
	p.watcher = w
	p.syncWatcher()
	return listen(w)
}

// Stop closes the file watcher.
func (p *Plugin) Stop() {
	if p.watcher != nil {
		if err := p.watcher.Close(); err != nil {
			p.ctx.Logger.Debug("editor: close watcher", "err", err)
		}
		p.watcher = nil
	}
}

// Tabs exposes the tab manager.
func (p *Plugin) Tabs() *tabs.Manager { return p.tabs }

// listen waits for the next change reported by w.
func listen(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-w.Events():
			return WatchEventMsg{Event: ev, watcher: w}
		case <-w.Done():
			return watchStoppedMsg{}
		}
	}
}

func (p *Plugin) syncWatcher() {
	if p.watcher != nil {
		p.watcher.Sync(p.tabs.Paths())
	}
}

// readFile reads path off the update loop.
func (p *Plugin) readFile(path, name string) tea.Cmd {
	reader := p.reader
	return func() tea.Msg {
		content, err := reader.ReadTextFile(path)
		return FileReadMsg{Path: path, Name: name, Content: content, Err: err}
	}
}

func (p *Plugin) reloadFile(path string) tea.Cmd {
	reader := p.reader
	return func() tea.Msg {
		content, err := reader.ReadTextFile(path)
		return ReloadedMsg{Path: path, Content: content, Err: err}
	}
}

// activeChanged announces the active tab to the other panes.
func (p *Plugin) activeChanged() tea.Cmd {
	path := p.tabs.ActiveID()
	return func() tea.Msg {
		return msg.ActiveTabMsg{Path: path}
	}
}

// Update handles messages.
func (p *Plugin) Update(m tea.Msg) (plugin.Plugin, tea.Cmd) {
	switch m := m.(type) {
	case msg.OpenFileMsg:
		return p, p.open(m.Path, m.Name)

	case FileReadMsg:
		if err := p.tabs.CompleteOpen(m.Path, m.Name, m.Content, m.Err); err != nil {
			if errors.Is(err, tabs.ErrNotPending) {
				return p, nil
			}
			p.ctx.Logger.Warn("editor: open failed", "path", m.Path, "err", m.Err)
			return p, msg.ShowError(err)
		}
		p.switched()
		p.syncWatcher()
		return p, p.activeChanged()

	case ReloadedMsg:
		if m.Err != nil {
			return p, msg.ShowError(m.Err)
		}
		if p.tabs.Reload(m.Path, m.Content) {
			p.renderer.Forget(m.Path)
		}
		return p, nil

	case WatchEventMsg:
		if p.watcher == nil || m.watcher != p.watcher {
			return p, nil
		}
		if m.Event.Removed {
			p.tabs.MarkMissingOnDisk(m.Event.Path)
		} else {
			p.tabs.MarkChangedOnDisk(m.Event.Path, m.Event.Fingerprint)
		}
		return p, listen(p.watcher)

	case tea.KeyMsg:
		return p.handleKey(m)

	case tea.MouseMsg:
		var cmd tea.Cmd
		p.vp, cmd = p.vp.Update(m)
		return p, cmd
	}
	return p, nil
}

// open activates an open tab or starts reading path.
func (p *Plugin) open(path, name string) tea.Cmd {
	before := p.tabs.ActiveID()
	p.tabs.SaveScroll(p.vp.YOffset)
	if !p.tabs.BeginOpen(path) {
		if p.tabs.ActiveID() != before {
			p.switched()
			return p.activeChanged()
		}
		return nil
	}
	return p.readFile(path, name)
}

// switched marks the viewport for a new active tab.
func (p *Plugin) switched() {
	p.restoreScroll = true
	p.shown = viewKey{}
}

// IsFocused returns whether the plugin is focused.
func (p *Plugin) IsFocused() bool { return p.focused }

// SetFocused sets the focus state.
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// FocusContext returns the current keymap context.
func (p *Plugin) FocusContext() string { return keymap.ContextEditor }

// Commands returns the commands shown in the footer.
func (p *Plugin) Commands() []plugin.Command {
	cmds := []plugin.Command{
		{ID: "next-tab", Name: "Next", Context: keymap.ContextEditor, Priority: 1},
		{ID: "prev-tab", Name: "Prev", Context: keymap.ContextEditor, Priority: 2},
		{ID: "close-tab", Name: "Close", Context: keymap.ContextEditor, Priority: 3},
		{ID: "yank-path", Name: "Yank", Context: keymap.ContextEditor, Priority: 5},
	}
	if tab, ok := p.tabs.ActiveTab(); ok {
		if highlight.IsMarkdown(tab.Name) {
			cmds = append(cmds, plugin.Command{ID: "toggle-markdown", Name: "Preview", Context: keymap.ContextEditor, Priority: 4})
		}
		if tab.ChangedOnDisk {
			cmds = append(cmds, plugin.Command{ID: "reload", Name: "Reload", Context: keymap.ContextEditor, Priority: 1})
		}
	}
	return cmds
}
