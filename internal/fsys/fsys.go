// Package fsys is the host filesystem boundary: one-level directory listings,
// text file reads and a recursive file index for quick open.
package fsys

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// DefaultMaxFileSize caps ReadTextFile when no limit is configured.
const DefaultMaxFileSize = 5 * 1024 * 1024

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

var (
	// ErrBinaryFile is returned by ReadTextFile for non-text content.
	ErrBinaryFile = errors.New("binary file")
	// ErrTooLarge is returned by ReadTextFile when the file exceeds the size cap.
	ErrTooLarge = errors.New("file too large")
	// ErrIsDirectory is returned by ReadTextFile when given a directory.
	ErrIsDirectory = errors.New("is a directory")
)

// Entry is one immediate child of a directory.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
}

// DirLister lists the immediate entries of one directory.
type DirLister interface {
	ListDirectory(path string) ([]Entry, error)
}

// FileReader reads a whole text file.
type FileReader interface {
	ReadTextFile(path string) (string, error)
}

// IOError wraps a failed filesystem read with the operation and path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Disk implements DirLister and FileReader against the local filesystem.
type Disk struct {
	HideSystemFiles bool
	MaxFileSize     int64
}

// NewDisk returns a Disk reader. maxFileSize <= 0 selects DefaultMaxFileSize.
func NewDisk(hideSystemFiles bool, maxFileSize int64) *Disk {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Disk{HideSystemFiles: hideSystemFiles, MaxFileSize: maxFileSize}
}

// ListDirectory returns the entries of path in the order the OS reports them.
// Symlinks are reported as directories when their target is one.
func (d *Disk) ListDirectory(path string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, &IOError{Op: "list", Path: path, Err: err}
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if d.HideSystemFiles && IsSystemFile(name) {
			continue
		}
		full := filepath.Join(path, name)
		isDir := de.IsDir()
		if de.Type()&fs.ModeSymlink != 0 {
			// Broken links stay files.
			if info, err := os.Stat(full); err == nil {
				isDir = info.IsDir()
			}
		}
		entries = append(entries, Entry{Name: name, Path: full, IsDir: isDir})
	}
	return entries, nil
}

// ReadTextFile reads path as UTF-8 text.
func (d *Disk) ReadTextFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	if info.IsDir() {
		return "", &IOError{Op: "read", Path: path, Err: ErrIsDirectory}
	}
	limit := d.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	if info.Size() > limit {
		return "", &IOError{Op: "read", Path: path, Err: ErrTooLarge}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	if IsBinary(data) {
		return "", &IOError{Op: "read", Path: path, Err: ErrBinaryFile}
	}
	return string(data), nil
}

// IsBinary reports whether data looks like non-text content: a NUL byte in
// the leading sample, or invalid UTF-8.
func IsBinary(data []byte) bool {
	sample := data
	if len(sample) > binarySniffLen {
		sample = sample[:binarySniffLen]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	return !utf8.Valid(data)
}
