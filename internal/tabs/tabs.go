// Package tabs manages the ordered set of files open in the editor.
package tabs

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/marcus/codeshell/internal/fsys"
)

// ErrNotPending is returned by CompleteOpen for a path with no open in flight.
var ErrNotPending = errors.New("tabs: no pending open for path")

// Tab is one open file. Content is read once at open time.
type Tab struct {
	ID      string // equal to Path
	Name    string
	Path    string
	Content string

	// IsDirty is reserved for edit tracking; nothing sets it yet.
	IsDirty bool

	Fingerprint   uint64 // xxhash of Content
	ChangedOnDisk bool   // file bytes no longer match Fingerprint
	Scroll        int    // saved viewport offset
}

// Fingerprint hashes file content for change detection.
func Fingerprint(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Manager owns the tab list and the active tab. Tabs are keyed by exact path
// string; callers pass canonical paths. Not safe for concurrent use.
type Manager struct {
	reader  fsys.FileReader
	tabs    []Tab
	active  string
	pending map[string]bool
}

// NewManager returns an empty Manager that reads files through reader.
func NewManager(reader fsys.FileReader) *Manager {
	return &Manager{
		reader:  reader,
		pending: make(map[string]bool),
	}
}

func (m *Manager) find(id string) int {
	for i := range m.tabs {
		if m.tabs[i].ID == id {
			return i
		}
	}
	return -1
}

// Has reports whether a tab for id is open.
func (m *Manager) Has(id string) bool { return m.find(id) >= 0 }

// OpenFile opens path as a tab and activates it. An already-open path is
// activated without reading it again. A failed read adds no tab.
func (m *Manager) OpenFile(path, name string) error {
	if !m.BeginOpen(path) {
		return nil
	}
	content, err := m.reader.ReadTextFile(path)
	return m.CompleteOpen(path, name, content, err)
}

// BeginOpen is the first half of an asynchronous open. It returns false when
// no read is needed: the tab exists (and is now active) or an open for the
// same path is already in flight. On true the caller must read the file and
// call CompleteOpen.
func (m *Manager) BeginOpen(path string) bool {
	if m.find(path) >= 0 {
		m.active = path
		return false
	}
	if m.pending[path] {
		return false
	}
	m.pending[path] = true
	return true
}

// CompleteOpen finishes an open started with BeginOpen. On readErr no tab is
// added and the wrapped error is returned.
func (m *Manager) CompleteOpen(path, name, content string, readErr error) error {
	if !m.pending[path] {
		return ErrNotPending
	}
	delete(m.pending, path)
	if readErr != nil {
		return fmt.Errorf("open %s: %w", path, readErr)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	m.tabs = append(m.tabs, Tab{
		ID:          path,
		Name:        name,
		Path:        path,
		Content:     content,
		Fingerprint: Fingerprint([]byte(content)),
	})
	m.active = path
	return nil
}

// Pending reports whether an open for path is in flight.
func (m *Manager) Pending(path string) bool { return m.pending[path] }

// CloseTab removes the tab with id. When the active tab is closed, the last
// remaining tab becomes active, or none when the list is empty.
func (m *Manager) CloseTab(id string) bool {
	idx := m.find(id)
	if idx < 0 {
		return false
	}
	m.tabs = append(m.tabs[:idx], m.tabs[idx+1:]...)

	if len(m.tabs) == 0 {
		m.active = ""
		return true
	}
	if m.active == id {
		m.active = m.tabs[len(m.tabs)-1].ID
	}
	return true
}

// SetActiveTab activates id. Unknown ids are ignored.
func (m *Manager) SetActiveTab(id string) bool {
	if m.find(id) < 0 {
		return false
	}
	m.active = id
	return true
}

// ActiveID returns the active tab id, or "".
func (m *Manager) ActiveID() string { return m.active }

// ActiveTab returns a copy of the active tab.
func (m *Manager) ActiveTab() (Tab, bool) {
	idx := m.find(m.active)
	if idx < 0 {
		return Tab{}, false
	}
	return m.tabs[idx], true
}

// ActiveIndex returns the active tab's position, or -1.
func (m *Manager) ActiveIndex() int { return m.find(m.active) }

// Tabs returns a copy of the tab list in display order.
func (m *Manager) Tabs() []Tab {
	out := make([]Tab, len(m.tabs))
	copy(out, m.tabs)
	return out
}

// Len returns the number of open tabs.
func (m *Manager) Len() int { return len(m.tabs) }

// Paths returns the open tab paths in display order.
func (m *Manager) Paths() []string {
	out := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = t.Path
	}
	return out
}

// Cycle moves the active tab by delta, wrapping around.
func (m *Manager) Cycle(delta int) bool {
	if len(m.tabs) < 2 {
		return false
	}
	idx := m.find(m.active)
	if idx < 0 {
		idx = 0
	}
	idx = ((idx+delta)%len(m.tabs) + len(m.tabs)) % len(m.tabs)
	m.active = m.tabs[idx].ID
	return true
}

// SaveScroll records the active tab's viewport offset.
func (m *Manager) SaveScroll(offset int) {
	if idx := m.find(m.active); idx >= 0 {
		m.tabs[idx].Scroll = offset
	}
}

// MarkChangedOnDisk flags the tab for path when fingerprint differs from the
// content it was opened with. It reports whether the flag changed.
func (m *Manager) MarkChangedOnDisk(path string, fingerprint uint64) bool {
	idx := m.find(path)
	if idx < 0 {
		return false
	}
	tab := &m.tabs[idx]
	changed := fingerprint != tab.Fingerprint
	if tab.ChangedOnDisk == changed {
		return false
	}
	tab.ChangedOnDisk = changed
	return true
}

// MarkMissingOnDisk flags the tab for path after its file was removed.
func (m *Manager) MarkMissingOnDisk(path string) bool {
	idx := m.find(path)
	if idx < 0 || m.tabs[idx].ChangedOnDisk {
		return false
	}
	m.tabs[idx].ChangedOnDisk = true
	return true
}

// Reload replaces the content of the tab for path with a fresh read and
// clears its changed-on-disk flag. Scroll is kept.
func (m *Manager) Reload(path, content string) bool {
	idx := m.find(path)
	if idx < 0 {
		return false
	}
	tab := &m.tabs[idx]
	tab.Content = content
	tab.Fingerprint = Fingerprint([]byte(content))
	tab.ChangedOnDisk = false
	return true
}
