// Package logbuf keeps the most recent log lines in memory so the UI can show
// them in the Output panel.
package logbuf

import (
	"bytes"
	"strings"
	"sync"
)

// DefaultCapacity is the number of lines kept when none is given.
const DefaultCapacity = 500

// Buffer is an io.Writer that records complete lines into a bounded ring.
type Buffer struct {
	mu      sync.Mutex
	lines   []string
	start   int
	count   int
	partial bytes.Buffer
	version uint64
}

// New creates a Buffer holding at most capacity lines.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{lines: make([]string, capacity)}
}

// Write appends p, splitting on newlines. A trailing partial line is held
// until its newline arrives.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rest := p
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			b.partial.Write(rest)
			break
		}
		b.partial.Write(rest[:i])
		b.push(strings.TrimSuffix(b.partial.String(), "\r"))
		b.partial.Reset()
		rest = rest[i+1:]
	}
	return len(p), nil
}

func (b *Buffer) push(line string) {
	capacity := len(b.lines)
	idx := (b.start + b.count) % capacity
	b.lines[idx] = line
	if b.count < capacity {
		b.count++
	} else {
		b.start = (b.start + 1) % capacity
	}
	b.version++
}

// Lines returns a copy of the buffered lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.lines[(b.start+i)%len(b.lines)]
	}
	return out
}

// Version increments on every completed line. Callers compare it to skip
// redundant redraws.
func (b *Buffer) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
