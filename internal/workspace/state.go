package workspace

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

// Protocol errors. They signal a caller bug or a superseded result and are
// never fatal.
var (
	ErrNoRoot          = errors.New("workspace: no root")
	ErrUnknownPath     = errors.New("workspace: unknown path")
	ErrNotFolder       = errors.New("workspace: not a folder")
	ErrAlreadyLoading  = errors.New("workspace: folder already loading")
	ErrAlreadyLoaded   = errors.New("workspace: folder already loaded")
	ErrNotLoading      = errors.New("workspace: folder not loading")
	ErrStaleGeneration = errors.New("workspace: result from replaced workspace")
)

// Request identifies one in-flight folder expansion. Generation is the root
// generation the request was issued against; it is checked only by
// ApplyChildren, MarkFailed and Resolve, never against the plugin epoch.
type Request struct {
	Path       string
	Generation uint64
}

// State owns the current tree root, the open workspace path, the expanded
// folder set and each folder's load state. It is not safe for concurrent
// use; all mutation happens on the UI update loop.
type State struct {
	root          *FileNode
	workspacePath string
	generation    uint64

	nodes    map[string]*FileNode
	expanded map[string]bool
	failures map[string]error

	activeTabID string
}

// NewState returns an empty workspace with no root.
func NewState() *State {
	return &State{
		nodes:    make(map[string]*FileNode),
		expanded: make(map[string]bool),
		failures: make(map[string]error),
	}
}

// Root returns the current tree root, or nil.
func (s *State) Root() *FileNode { return s.root }

// WorkspacePath returns the open workspace path, or "".
func (s *State) WorkspacePath() string { return s.workspacePath }

// Generation changes every time the root is replaced.
func (s *State) Generation() uint64 { return s.generation }

// SetRoot replaces the tree and path. Expanded state from the previous root is
// dropped and any in-flight expansion becomes stale.
func (s *State) SetRoot(node *FileNode, workspacePath string) {
	s.root = node
	s.workspacePath = workspacePath
	s.generation++
	s.nodes = make(map[string]*FileNode)
	s.expanded = make(map[string]bool)
	s.failures = make(map[string]error)
	if node != nil {
		s.index(node)
	}
}

// Clear closes the workspace.
func (s *State) Clear() { s.SetRoot(nil, "") }

func (s *State) index(n *FileNode) {
	s.nodes[n.Path] = n
	for _, c := range n.Children {
		s.index(c)
	}
}

// Find returns the known node at path, or nil.
func (s *State) Find(path string) *FileNode {
	return s.nodes[path]
}

func (s *State) folder(path string) (*FileNode, error) {
	if s.root == nil {
		return nil, ErrNoRoot
	}
	n := s.nodes[path]
	if n == nil {
		return nil, ErrUnknownPath
	}
	if !n.IsFolder() {
		return nil, ErrNotFolder
	}
	return n, nil
}

// MarkLoading moves an unloaded or failed folder to loading and returns the
// request the eventual result must carry. A folder that is already loading
// or loaded is rejected, so at most one read per folder is ever in flight.
func (s *State) MarkLoading(path string) (Request, error) {
	n, err := s.folder(path)
	if err != nil {
		return Request{}, err
	}
	switch n.Load {
	case LoadLoading:
		return Request{}, ErrAlreadyLoading
	case LoadLoaded:
		return Request{}, ErrAlreadyLoaded
	}
	n.Load = LoadLoading
	delete(s.failures, path)
	return Request{Path: path, Generation: s.generation}, nil
}

// ApplyChildren completes a request: loading -> loaded.
func (s *State) ApplyChildren(req Request, children []*FileNode) error {
	n, err := s.inFlight(req)
	if err != nil {
		return err
	}
	for _, old := range n.Children {
		s.unindex(old)
	}
	n.Children = children
	n.Load = LoadLoaded
	for _, c := range children {
		s.index(c)
	}
	return nil
}

// MarkFailed completes a request unsuccessfully: loading -> failed. A failed
// folder can be retried with MarkLoading.
func (s *State) MarkFailed(req Request, cause error) error {
	n, err := s.inFlight(req)
	if err != nil {
		return err
	}
	n.Load = LoadFailed
	n.Children = nil
	s.failures[req.Path] = cause
	return nil
}

func (s *State) inFlight(req Request) (*FileNode, error) {
	if req.Generation != s.generation {
		return nil, ErrStaleGeneration
	}
	n, err := s.folder(req.Path)
	if err != nil {
		return nil, err
	}
	if n.Load != LoadLoading {
		return nil, ErrNotLoading
	}
	return n, nil
}

func (s *State) unindex(n *FileNode) {
	delete(s.nodes, n.Path)
	for _, c := range n.Children {
		s.unindex(c)
	}
}

// Failure returns the error recorded for a failed folder.
func (s *State) Failure(path string) error { return s.failures[path] }

// IsExpanded reports view state only; it says nothing about load state.
func (s *State) IsExpanded(path string) bool { return s.expanded[path] }

// ToggleExpanded flips a folder's expanded flag. Expanding a folder whose
// children are unloaded or failed returns a load request; expanding a loaded
// or loading folder returns none.
func (s *State) ToggleExpanded(path string) (Request, bool) {
	return s.SetExpanded(path, !s.expanded[path])
}

// SetExpanded sets a folder's expanded flag, returning a load request when
// expanding requires a fetch. Collapsing never discards loaded children.
func (s *State) SetExpanded(path string, expanded bool) (Request, bool) {
	n, err := s.folder(path)
	if err != nil {
		return Request{}, false
	}
	if !expanded {
		delete(s.expanded, path)
		return Request{}, false
	}
	s.expanded[path] = true
	if n.Load != LoadUnloaded && n.Load != LoadFailed {
		return Request{}, false
	}
	req, err := s.MarkLoading(path)
	if err != nil {
		return Request{}, false
	}
	return req, true
}

// CollapseAll clears the expanded set. Loaded children are kept.
func (s *State) CollapseAll() {
	s.expanded = make(map[string]bool)
}

// ExpandToDepth marks every loaded folder shallower than depth as expanded.
// The root is depth 0.
func (s *State) ExpandToDepth(depth int) {
	if s.root == nil {
		return
	}
	var walk func(n *FileNode, d int)
	walk = func(n *FileNode, d int) {
		if !n.IsFolder() || d >= depth {
			return
		}
		if n != s.root && n.Load == LoadLoaded {
			s.expanded[n.Path] = true
		}
		for _, c := range n.Children {
			walk(c, d+1)
		}
	}
	walk(s.root, 0)
}

// RestoreExpanded re-applies a saved expanded set. Paths outside the current
// workspace are ignored. Folders that are not known yet are loaded as their
// parents are; see PendingLoads.
func (s *State) RestoreExpanded(paths []string) {
	if s.root == nil {
		return
	}
	for _, p := range paths {
		if within(s.workspacePath, p) {
			s.expanded[p] = true
		}
	}
}

// ExpandAncestors expands every folder between the root and path so a node
// can be revealed once its parents load.
func (s *State) ExpandAncestors(path string) {
	if s.root == nil || !within(s.workspacePath, path) {
		return
	}
	for dir := filepath.Dir(path); within(s.workspacePath, dir) && dir != s.root.Path; dir = filepath.Dir(dir) {
		s.expanded[dir] = true
		if dir == filepath.Dir(dir) {
			break
		}
	}
}

// ExpandedPaths returns the expanded set, sorted.
func (s *State) ExpandedPaths() []string {
	out := make([]string, 0, len(s.expanded))
	for p := range s.expanded {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// PendingLoads issues requests for every visible folder that is expanded but
// still unloaded, including an unloaded root. Failed folders are skipped;
// they are retried only by an explicit expand.
func (s *State) PendingLoads() []Request {
	if s.root == nil {
		return nil
	}
	var reqs []Request
	var walk func(n *FileNode)
	walk = func(n *FileNode) {
		switch n.Load {
		case LoadUnloaded:
			if req, err := s.MarkLoading(n.Path); err == nil {
				reqs = append(reqs, req)
			}
		case LoadLoaded:
			for _, c := range n.Children {
				if c.IsFolder() && s.expanded[c.Path] {
					walk(c)
				}
			}
		}
	}
	walk(s.root)
	return reqs
}

// SetActiveTab records the active tab id for tree highlighting.
func (s *State) SetActiveTab(id string) { s.activeTabID = id }

// ActiveTabID returns the id last passed to SetActiveTab.
func (s *State) ActiveTabID() string { return s.activeTabID }

// within reports whether p is root or below it.
func within(root, p string) bool {
	if root == "" {
		return false
	}
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

// Resolve applies the outcome of the read issued for req.
func (s *State) Resolve(req Request, children []*FileNode, readErr error) error {
	if readErr != nil {
		return s.MarkFailed(req, readErr)
	}
	return s.ApplyChildren(req, children)
}
