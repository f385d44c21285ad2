package workspace

import (
	"runtime"
	"sort"
	"strings"

	"github.com/marcus/codeshell/internal/fsys"
)

// caseInsensitiveFS is true where the default host filesystem folds case.
var caseInsensitiveFS = runtime.GOOS == "darwin" || runtime.GOOS == "windows"

// nameLess orders names by host collation. On case-folding hosts, names are
// compared case-insensitively with byte order as the tie-break.
func nameLess(a, b string) bool {
	if caseInsensitiveFS {
		la, lb := strings.ToLower(a), strings.ToLower(b)
		if la != lb {
			return la < lb
		}
	}
	return a < b
}

// sortEntries orders folders before files, then by name.
func sortEntries(entries []fsys.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return nameLess(entries[i].Name, entries[j].Name)
	})
}
