package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDir  = ".config/codeshell"
	configFile = "config.json"
)

// rawConfig is the JSON-unmarshaling intermediary. Pointer fields tell an
// explicit false or zero apart from an absent key.
type rawConfig struct {
	Tree     rawTreeConfig     `json:"tree"`
	Editor   rawEditorConfig   `json:"editor"`
	Terminal rawTerminalConfig `json:"terminal"`
	Keymap   KeymapConfig      `json:"keymap"`
	UI       rawUIConfig       `json:"ui"`
}

type rawTreeConfig struct {
	MaxDepth        *int  `json:"maxDepth"`
	AutoExpandDepth *int  `json:"autoExpandDepth"`
	HideSystemFiles *bool `json:"hideSystemFiles"`
}

type rawEditorConfig struct {
	SyntaxTheme    string `json:"syntaxTheme"`
	MarkdownStyle  string `json:"markdownStyle"`
	MaxFileSize    *int64 `json:"maxFileSize"`
	RenderMarkdown *bool  `json:"renderMarkdown"`
}

type rawTerminalConfig struct {
	Shell      string `json:"shell"`
	Visible    *bool  `json:"visible"`
	Height     *int   `json:"height"`
	Scrollback *int   `json:"scrollback"`
}

type rawUIConfig struct {
	ShowFooter *bool `json:"showFooter"`
	TreeWidth  *int  `json:"treeWidth"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/codeshell/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	mergeConfig(cfg, &raw)
	cfg.Terminal.Shell = ExpandPath(cfg.Terminal.Shell)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	// Tree
	if raw.Tree.MaxDepth != nil {
		cfg.Tree.MaxDepth = *raw.Tree.MaxDepth
	}
	if raw.Tree.AutoExpandDepth != nil {
		cfg.Tree.AutoExpandDepth = *raw.Tree.AutoExpandDepth
	}
	if raw.Tree.HideSystemFiles != nil {
		cfg.Tree.HideSystemFiles = *raw.Tree.HideSystemFiles
	}

	// Editor
	if raw.Editor.SyntaxTheme != "" {
		cfg.Editor.SyntaxTheme = raw.Editor.SyntaxTheme
	}
	if raw.Editor.MarkdownStyle != "" {
		cfg.Editor.MarkdownStyle = raw.Editor.MarkdownStyle
	}
	if raw.Editor.MaxFileSize != nil {
		cfg.Editor.MaxFileSize = *raw.Editor.MaxFileSize
	}
	if raw.Editor.RenderMarkdown != nil {
		cfg.Editor.RenderMarkdown = *raw.Editor.RenderMarkdown
	}

	// Terminal
	if raw.Terminal.Shell != "" {
		cfg.Terminal.Shell = raw.Terminal.Shell
	}
	if raw.Terminal.Visible != nil {
		cfg.Terminal.Visible = *raw.Terminal.Visible
	}
	if raw.Terminal.Height != nil {
		cfg.Terminal.Height = *raw.Terminal.Height
	}
	if raw.Terminal.Scrollback != nil {
		cfg.Terminal.Scrollback = *raw.Terminal.Scrollback
	}

	// Keymap
	for k, v := range raw.Keymap.Overrides {
		cfg.Keymap.Overrides[k] = v
	}

	// UI
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.TreeWidth != nil {
		cfg.UI.TreeWidth = *raw.UI.TreeWidth
	}
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// testConfigPath overrides ConfigPath in tests.
var testConfigPath string

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if testConfigPath != "" {
		return testConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

// ConfigDir returns the directory holding config, state and logs.
func ConfigDir() string {
	path := ConfigPath()
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

// SetTestConfigPath points ConfigPath at path. Tests only.
func SetTestConfigPath(path string) {
	testConfigPath = path
}

// ResetTestConfigPath restores the default ConfigPath.
func ResetTestConfigPath() {
	testConfigPath = ""
}
