package fsys

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// skipIndexDirs are never descended into when building the quick-open index.
var skipIndexDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
}

var errIndexFull = errors.New("index limit reached")

// Index is a snapshot of workspace-relative file paths.
type Index struct {
	Root      string
	Files     []string
	Truncated bool // limit was reached before the walk finished
}

// BuildIndex walks root and collects up to limit regular file paths relative
// to root, sorted. Unreadable subdirectories are skipped.
func BuildIndex(ctx context.Context, root string, limit int, hideSystemFiles bool) (*Index, error) {
	var (
		mu    sync.Mutex
		files []string
		full  bool
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && skipIndexDirs[name] {
				return fastwalk.SkipDir
			}
			return nil
		}
		if hideSystemFiles && IsSystemFile(name) {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		if limit > 0 && len(files) >= limit {
			full = true
			return errIndexFull
		}
		files = append(files, rel)
		return nil
	})
	if err != nil && !errors.Is(err, errIndexFull) {
		return nil, &IOError{Op: "index", Path: root, Err: err}
	}

	sort.Strings(files)
	return &Index{Root: root, Files: files, Truncated: full}, nil
}
