package terminal

import (
	"fmt"
	"strings"
)

// DefaultPrompt is echoed before every submitted command.
const DefaultPrompt = "$ "

// DefaultScrollback is the number of lines kept when none is configured.
const DefaultScrollback = 1000

// pending is the single running-command slot.
type pending struct {
	id        uint64
	command   string
	sawOutput bool
}

// Session is the terminal pane's state: an editable input buffer, at most one
// running command and a FIFO of lines submitted while it runs. Keystrokes
// are never dropped while a command is running. Not safe for concurrent
// use; drive it from the UI update loop.
type Session struct {
	Prompt     string
	scrollback int

	input   []rune
	queue   []string
	pending *pending
	nextID  uint64

	lines []Line

	history    []string
	historyPos int // len(history) when not browsing
}

// NewSession returns an idle session keeping up to scrollback lines.
func NewSession(scrollback int) *Session {
	if scrollback <= 0 {
		scrollback = DefaultScrollback
	}
	return &Session{Prompt: DefaultPrompt, scrollback: scrollback}
}

// Type appends printable text to the input buffer. Control characters are
// ignored.
func (s *Session) Type(text string) {
	for _, r := range text {
		if r >= 32 && r != 127 {
			s.input = append(s.input, r)
		}
	}
}

// Backspace deletes the last input rune.
func (s *Session) Backspace() {
	if len(s.input) > 0 {
		s.input = s.input[:len(s.input)-1]
	}
}

// Input returns the current input buffer.
func (s *Session) Input() string { return string(s.input) }

// SetInput replaces the input buffer.
func (s *Session) SetInput(text string) {
	s.input = s.input[:0]
	s.Type(text)
}

// Busy reports whether a command is running.
func (s *Session) Busy() bool { return s.pending != nil }

// Running returns the id and text of the running command.
func (s *Session) Running() (uint64, string, bool) {
	if s.pending == nil {
		return 0, "", false
	}
	return s.pending.id, s.pending.command, true
}

// Queued returns the lines waiting for the running command to finish.
func (s *Session) Queued() []string {
	out := make([]string, len(s.queue))
	copy(out, s.queue)
	return out
}

// DropQueued discards lines waiting behind the running command and reports
// how many there were.
func (s *Session) DropQueued() int {
	n := len(s.queue)
	s.queue = nil
	return n
}

// Submit consumes the input buffer. It returns the command to start now and
// its id, or ok=false when the line was blank or has been queued behind a
// running command.
func (s *Session) Submit() (id uint64, command string, ok bool) {
	raw := string(s.input)
	s.input = s.input[:0]
	s.append(Line{Stream: System, Text: s.Prompt + raw})

	command = strings.TrimSpace(raw)
	if command == "" {
		return 0, "", false
	}
	if n := len(s.history); n == 0 || s.history[n-1] != command {
		s.history = append(s.history, command)
	}
	s.historyPos = len(s.history)
	if s.pending != nil {
		s.queue = append(s.queue, command)
		return 0, "", false
	}
	id = s.begin(command)
	return id, command, true
}

func (s *Session) begin(command string) uint64 {
	s.nextID++
	s.pending = &pending{id: s.nextID, command: command}
	return s.nextID
}

// Output records a line from the command with id. Lines for any other id
// are dropped.
func (s *Session) Output(id uint64, line Line) {
	if s.pending == nil || s.pending.id != id {
		return
	}
	s.pending.sawOutput = true
	s.append(line)
}

// Exit completes the command with id. A spawn or wait failure is written as
// an error line; a non-zero exit with no output gets a status line. If lines
// were queued the next one starts and is returned.
func (s *Session) Exit(id uint64, code int, err error) (nextID uint64, next string, ok bool) {
	if s.pending == nil || s.pending.id != id {
		return 0, "", false
	}
	switch {
	case err != nil:
		s.append(Line{Stream: Stderr, Text: fmt.Sprintf("Error: %v", err)})
	case code != 0 && !s.pending.sawOutput:
		s.append(Line{Stream: Stderr, Text: fmt.Sprintf("Command failed with exit code %d", code)})
	}
	s.pending = nil

	if len(s.queue) == 0 {
		return 0, "", false
	}
	next = s.queue[0]
	s.queue = s.queue[1:]
	nextID = s.begin(next)
	return nextID, next, true
}

// HistoryPrev replaces the input with the previous submitted command.
func (s *Session) HistoryPrev() {
	if s.historyPos == 0 {
		return
	}
	s.historyPos--
	s.SetInput(s.history[s.historyPos])
}

// HistoryNext moves forward through history, ending on an empty input.
func (s *Session) HistoryNext() {
	if s.historyPos >= len(s.history) {
		return
	}
	s.historyPos++
	if s.historyPos == len(s.history) {
		s.SetInput("")
		return
	}
	s.SetInput(s.history[s.historyPos])
}

// Write appends a system line, e.g. a banner.
func (s *Session) Write(text string) {
	s.append(Line{Stream: System, Text: text})
}

// Lines returns the scrollback.
func (s *Session) Lines() []Line { return s.lines }

// Clear empties the scrollback.
func (s *Session) Clear() { s.lines = nil }

func (s *Session) append(l Line) {
	s.lines = append(s.lines, l)
	if over := len(s.lines) - s.scrollback; over > 0 {
		s.lines = append(s.lines[:0:0], s.lines[over:]...)
	}
}
