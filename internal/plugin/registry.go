package plugin

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Registry owns the plugins in display order.
type Registry struct {
	ctx         *Context
	plugins     []Plugin
	unavailable map[string]string // id -> reason
}

// NewRegistry creates a registry sharing ctx with every plugin.
func NewRegistry(ctx *Context) *Registry {
	return &Registry{
		ctx:         ctx,
		unavailable: make(map[string]string),
	}
}

// Context returns the shared plugin context.
func (r *Registry) Context() *Context { return r.ctx }

// Register initializes p and adds it. A plugin whose Init fails is recorded
// as unavailable and not added.
func (r *Registry) Register(p Plugin) error {
	if err := p.Init(r.ctx); err != nil {
		r.unavailable[p.ID()] = err.Error()
		if r.ctx.Logger != nil {
			r.ctx.Logger.Warn("plugin unavailable", "plugin", p.ID(), "err", err)
		}
		return fmt.Errorf("init %s: %w", p.ID(), err)
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// Plugins returns the registered plugins. The slice is shared so callers can
// store the value returned by Update.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// Get returns the plugin with id.
func (r *Registry) Get(id string) Plugin {
	for _, p := range r.plugins {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// Unavailable returns plugins that failed to initialize, with reasons.
func (r *Registry) Unavailable() map[string]string { return r.unavailable }

// Start starts every plugin and returns their start commands.
func (r *Registry) Start() []tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range r.plugins {
		if cmd := p.Start(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Stop stops every plugin in reverse order.
func (r *Registry) Stop() {
	for i := len(r.plugins) - 1; i >= 0; i-- {
		r.plugins[i].Stop()
	}
}

// Reinit moves all plugins to workDir: they are stopped, the epoch is bumped
// so in-flight results for the old folder are ignored, and each plugin is
// initialized and started again.
func (r *Registry) Reinit(workDir string) []tea.Cmd {
	r.Stop()
	r.ctx.WorkDir = workDir
	r.ctx.Epoch++

	kept := r.plugins[:0]
	for _, p := range r.plugins {
		if err := p.Init(r.ctx); err != nil {
			r.unavailable[p.ID()] = err.Error()
			if r.ctx.Logger != nil {
				r.ctx.Logger.Warn("plugin reinit failed", "plugin", p.ID(), "err", err)
			}
			continue
		}
		kept = append(kept, p)
	}
	r.plugins = kept
	return r.Start()
}
