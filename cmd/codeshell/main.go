package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/codeshell/internal/app"
	"github.com/marcus/codeshell/internal/config"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/logbuf"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/plugins/editor"
	"github.com/marcus/codeshell/internal/plugins/explorer"
	"github.com/marcus/codeshell/internal/plugins/terminal"
	"github.com/marcus/codeshell/internal/state"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath   = flag.String("config", "", "path to config file")
	projectRoot  = flag.String("project", "", "folder to open (default: last opened)")
	debugFlag    = flag.Bool("debug", false, "enable debug logging to debug.log")
	versionFlag  = flag.Bool("version", false, "print version and exit")
	shortVersion = flag.Bool("v", false, "print version and exit (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *shortVersion {
		fmt.Printf("codeshell version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	configDir := config.ConfigDir()
	if *configPath != "" {
		configDir = filepath.Dir(*configPath)
	}

	// The alt screen owns stderr, so logs go to the Output panel and, with
	// --debug, to a file.
	logs := logbuf.New(logbuf.DefaultCapacity)
	var out io.Writer = logs
	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
		if f, err := openDebugLog(configDir); err == nil {
			defer f.Close()
			out = io.MultiWriter(logs, f)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to open debug log: %v\n", err)
		}
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Persistent state is optional; a corrupt file starts from defaults.
	store, err := state.Open(configDir)
	if err != nil {
		logger.Warn("state load failed", "path", store.Path(), "err", err)
	}

	workDir := app.ResolveWorkspace(*projectRoot, store)
	if workDir != "" {
		if err := store.SetWorkspacePath(workDir); err != nil {
			logger.Warn("state save failed", "err", err)
		}
	}

	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	for key, cmdID := range cfg.Keymap.Overrides {
		km.SetUserOverride(key, cmdID)
	}

	pluginCtx := &plugin.Context{
		WorkDir:   workDir,
		ConfigDir: configDir,
		Config:    cfg,
		State:     store,
		Keymap:    km,
		Logger:    logger,
		LogBuffer: logs,
	}

	// Registration order is the focus order.
	registry := plugin.NewRegistry(pluginCtx)
	_ = registry.Register(explorer.New())
	_ = registry.Register(editor.New())
	_ = registry.Register(terminal.New())

	logger.Info("codeshell starting", "version", effectiveVersion(Version), "workspace", workDir)

	model := app.New(registry, km, cfg, store, effectiveVersion(Version), workDir)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, err = p.Run()
	registry.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// First run: write the defaults so there is a file to edit.
	if p := config.ConfigPath(); p != "" {
		if _, statErr := os.Stat(p); os.IsNotExist(statErr) {
			_ = config.Save(cfg)
		}
	}
	return cfg, nil
}

func openDebugLog(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}

	if revision != "" {
		ver := "devel+" + revision
		if len(ver) > 20 {
			ver = ver[:20]
		}
		if dirty {
			ver += "+dirty"
		}
		return ver
	}
	return "devel"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: codeshell [options]\n\n")
		fmt.Fprintf(os.Stderr, "A terminal code workspace: file explorer, viewer tabs and a shell.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
