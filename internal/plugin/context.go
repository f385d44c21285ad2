package plugin

import (
	"log/slog"

	"github.com/marcus/codeshell/internal/config"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/logbuf"
	"github.com/marcus/codeshell/internal/state"
)

// Context is shared by all plugins. WorkDir and Epoch change when a
// different workspace folder is opened.
type Context struct {
	WorkDir   string
	ConfigDir string
	Config    *config.Config
	State     *state.Store
	Keymap    *keymap.Registry
	Logger    *slog.Logger
	LogBuffer *logbuf.Buffer
	Epoch     uint64
}

// Lookup resolves key against the keymap in context, falling back to ""
// when no keymap is configured.
func (c *Context) Lookup(key, context string) string {
	if c == nil || c.Keymap == nil {
		return ""
	}
	cmd, _ := c.Keymap.Lookup(key, context)
	return cmd
}
