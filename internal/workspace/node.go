// Package workspace holds the in-memory model of an open directory: the node
// tree, how it is built and lazily expanded, and the per-folder load state
// machine that the explorer drives.
package workspace

// Kind distinguishes file nodes from folder nodes.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// LoadState tracks whether a folder's children have been fetched.
//
//	unloaded -> loading -> loaded
//	                    -> failed -> loading (retry)
type LoadState int

const (
	LoadUnloaded LoadState = iota
	LoadLoading
	LoadLoaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadLoading:
		return "loading"
	case LoadLoaded:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

// FileNode is one filesystem entry in the workspace tree. The absolute path
// doubles as its identity.
type FileNode struct {
	Name string
	Path string
	Kind Kind

	// Folder-only. Children is meaningful only when Load == LoadLoaded.
	Load     LoadState
	Children []*FileNode
}

// ID returns the node identity.
func (n *FileNode) ID() string { return n.Path }

// IsFolder reports whether n is a folder node.
func (n *FileNode) IsFolder() bool { return n.Kind == KindFolder }

// NewFile returns a leaf node.
func NewFile(path, name string) *FileNode {
	return &FileNode{Name: name, Path: path, Kind: KindFile}
}

// NewFolder returns a folder node whose children are not yet fetched.
func NewFolder(path, name string) *FileNode {
	return &FileNode{Name: name, Path: path, Kind: KindFolder, Load: LoadUnloaded}
}

// Equal reports whether a and b have the same shape: names, paths, kinds,
// load states and child order, recursively.
func Equal(a, b *FileNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Path != b.Path || a.Kind != b.Kind || a.Load != b.Load {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// find returns the node at path within the subtree rooted at n.
func (n *FileNode) find(path string) *FileNode {
	if n.Path == path {
		return n
	}
	for _, c := range n.Children {
		if c.Kind != KindFolder && c.Path != path {
			continue
		}
		if found := c.find(path); found != nil {
			return found
		}
	}
	return nil
}
