package config

// Config is the root configuration structure.
type Config struct {
	Tree     TreeConfig     `json:"tree"`
	Editor   EditorConfig   `json:"editor"`
	Terminal TerminalConfig `json:"terminal"`
	Keymap   KeymapConfig   `json:"keymap"`
	UI       UIConfig       `json:"ui"`
}

// TreeConfig configures the explorer tree.
type TreeConfig struct {
	MaxDepth        int  `json:"maxDepth"`        // levels read eagerly on open
	AutoExpandDepth int  `json:"autoExpandDepth"` // levels shown expanded on first open
	HideSystemFiles bool `json:"hideSystemFiles"`
}

// EditorConfig configures the editor pane.
type EditorConfig struct {
	SyntaxTheme    string `json:"syntaxTheme"`   // chroma style name
	MarkdownStyle  string `json:"markdownStyle"` // glamour standard style
	MaxFileSize    int64  `json:"maxFileSize"`   // bytes
	RenderMarkdown bool   `json:"renderMarkdown"`
}

// TerminalConfig configures the terminal pane.
type TerminalConfig struct {
	Shell      string `json:"shell"` // empty uses $SHELL, then sh
	Visible    bool   `json:"visible"`
	Height     int    `json:"height"`
	Scrollback int    `json:"scrollback"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter bool `json:"showFooter"`
	TreeWidth  int  `json:"treeWidth"`
}

const (
	defaultMaxDepth        = 3
	defaultAutoExpandDepth = 2
	defaultMaxFileSize     = 5 * 1024 * 1024
	defaultTerminalHeight  = 12
	defaultScrollback      = 1000
	defaultTreeWidth       = 30
	minTerminalHeight      = 3
	minTreeWidth           = 12
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Tree: TreeConfig{
			MaxDepth:        defaultMaxDepth,
			AutoExpandDepth: defaultAutoExpandDepth,
			HideSystemFiles: true,
		},
		Editor: EditorConfig{
			SyntaxTheme:    "monokai",
			MarkdownStyle:  "dark",
			MaxFileSize:    defaultMaxFileSize,
			RenderMarkdown: true,
		},
		Terminal: TerminalConfig{
			Visible:    true,
			Height:     defaultTerminalHeight,
			Scrollback: defaultScrollback,
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowFooter: true,
			TreeWidth:  defaultTreeWidth,
		},
	}
}

// Validate checks the configuration for errors, correcting out-of-range
// values to their defaults.
func (c *Config) Validate() error {
	if c.Tree.MaxDepth < 1 {
		c.Tree.MaxDepth = defaultMaxDepth
	}
	if c.Tree.AutoExpandDepth < 0 {
		c.Tree.AutoExpandDepth = defaultAutoExpandDepth
	}
	if c.Editor.MaxFileSize <= 0 {
		c.Editor.MaxFileSize = defaultMaxFileSize
	}
	if c.Terminal.Height < minTerminalHeight {
		c.Terminal.Height = defaultTerminalHeight
	}
	if c.Terminal.Scrollback <= 0 {
		c.Terminal.Scrollback = defaultScrollback
	}
	if c.UI.TreeWidth < minTreeWidth {
		c.UI.TreeWidth = defaultTreeWidth
	}
	if c.Keymap.Overrides == nil {
		c.Keymap.Overrides = make(map[string]string)
	}
	return nil
}
