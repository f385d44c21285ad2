// Package state persists UI state between runs: the last opened workspace,
// its expanded folders, and pane sizes.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const fileName = "state.json"

// Terminal panels.
const (
	PanelTerminal = "terminal"
	PanelOutput   = "output"
)

// State holds persistent user preferences.
type State struct {
	WorkspacePath string        `json:"workspacePath,omitempty"`
	Explorer      ExplorerState `json:"explorer"`
	Terminal      TerminalState `json:"terminal"`
}

// ExplorerState holds persistent explorer state for WorkspacePath.
type ExplorerState struct {
	ExpandedDirs []string `json:"expandedDirs,omitempty"` // absolute folder paths
	SelectedPath string   `json:"selectedPath,omitempty"`
	TreeWidth    int      `json:"treeWidth,omitempty"` // 0 = use config
}

// TerminalState holds persistent terminal pane state.
type TerminalState struct {
	Visible     *bool  `json:"visible,omitempty"` // nil = use config
	Height      int    `json:"height,omitempty"`  // 0 = use config
	ActivePanel string `json:"activePanel,omitempty"`
}

// Store loads and saves State to a JSON file. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	path    string
	current State
}

// Open loads the store from dir/state.json. A missing file yields defaults.
func Open(dir string) (*Store, error) {
	s := &Store{path: filepath.Join(dir, fileName)}
	return s, s.Load()
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads state from disk.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = State{}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.current = loaded
	return nil
}

// Save writes state to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.current
	st.Explorer.ExpandedDirs = append([]string(nil), s.current.Explorer.ExpandedDirs...)
	return st
}

// WorkspacePath returns the last opened workspace, or "".
func (s *Store) WorkspacePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.WorkspacePath
}

// SetWorkspacePath records the opened workspace and saves. Switching to a
// different workspace forgets the previous explorer selection and expansion.
func (s *Store) SetWorkspacePath(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.WorkspacePath != path {
		s.current.Explorer.ExpandedDirs = nil
		s.current.Explorer.SelectedPath = ""
	}
	s.current.WorkspacePath = path
	return s.saveLocked()
}

// Explorer returns the saved explorer state.
func (s *Store) Explorer() ExplorerState {
	return s.Snapshot().Explorer
}

// SetExplorer saves the explorer state.
func (s *Store) SetExplorer(es ExplorerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	es.ExpandedDirs = append([]string(nil), es.ExpandedDirs...)
	s.current.Explorer = es
	return s.saveLocked()
}

// Terminal returns the saved terminal pane state.
func (s *Store) Terminal() TerminalState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Terminal
}

// SetTerminal saves the terminal pane state.
func (s *Store) SetTerminal(ts TerminalState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Terminal = ts
	return s.saveLocked()
}
