package workspace

import (
	"log/slog"

	"github.com/marcus/codeshell/internal/fsys"
)

// DefaultMaxDepth is the eager build depth used when none is configured.
const DefaultMaxDepth = 3

// Builder constructs node trees from a DirLister. Read failures never abort a
// build: the affected folder is marked failed and the error is logged.
type Builder struct {
	reader fsys.DirLister
	logger *slog.Logger
}

// NewBuilder returns a Builder. A nil logger discards log output.
func NewBuilder(reader fsys.DirLister, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{reader: reader, logger: logger}
}

// Build reads rootPath and eagerly expands folders shallower than maxDepth.
// The root is depth 0; folders at depth >= maxDepth are returned unloaded.
// Errors from unreadable folders are returned alongside the tree.
func (b *Builder) Build(rootPath, rootName string, maxDepth int) (*FileNode, []error) {
	var errs []error
	root := b.build(rootPath, rootName, 0, maxDepth, &errs)
	return root, errs
}

func (b *Builder) build(path, name string, depth, maxDepth int, errs *[]error) *FileNode {
	node := NewFolder(path, name)
	if depth >= maxDepth {
		return node
	}

	entries, err := b.reader.ListDirectory(path)
	if err != nil {
		b.logger.Warn("workspace: folder unreadable", "path", path, "err", err)
		*errs = append(*errs, err)
		node.Load = LoadFailed
		node.Children = nil
		return node
	}
	sortEntries(entries)

	children := make([]*FileNode, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			children = append(children, b.build(e.Path, e.Name, depth+1, maxDepth, errs))
		} else {
			children = append(children, NewFile(e.Path, e.Name))
		}
	}
	node.Children = children
	node.Load = LoadLoaded
	return node
}

// ExpandChildren fetches one level of path: files as leaves, folders
// unloaded. On failure it returns an empty slice and the error.
func (b *Builder) ExpandChildren(path string) ([]*FileNode, error) {
	entries, err := b.reader.ListDirectory(path)
	if err != nil {
		b.logger.Warn("workspace: expand failed", "path", path, "err", err)
		return []*FileNode{}, err
	}
	sortEntries(entries)

	children := make([]*FileNode, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			children = append(children, NewFolder(e.Path, e.Name))
		} else {
			children = append(children, NewFile(e.Path, e.Name))
		}
	}
	return children, nil
}
