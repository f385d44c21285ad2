package fsys

import "strings"

// systemFiles are OS metadata files that never belong in a project tree.
var systemFiles = map[string]bool{
	".DS_Store":               true,
	".Spotlight-V100":         true,
	".Trashes":                true,
	".fseventsd":              true,
	".TemporaryItems":         true,
	".DocumentRevisions-V100": true,
	"Thumbs.db":               true,
	"desktop.ini":             true,
	"$RECYCLE.BIN":            true,
}

// IsSystemFile reports whether name is an OS metadata file (macOS resource
// forks included). Matching is case-sensitive.
func IsSystemFile(name string) bool {
	if systemFiles[name] {
		return true
	}
	return strings.HasPrefix(name, "._")
}
