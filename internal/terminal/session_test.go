package terminal

import (
	"errors"
	"strings"
	"testing"
)

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestSession_TypeAndBackspace(t *testing.T) {
	s := NewSession(0)
	s.Type("ls -la")
	s.Type("\x1b")
	s.Backspace()
	if got := s.Input(); got != "ls -l" {
		t.Errorf("input = %q, want %q", got, "ls -l")
	}
	s.Backspace()
	s.Backspace()
	s.Backspace()
	s.Backspace()
	s.Backspace()
	s.Backspace()
	if s.Input() != "" {
		t.Errorf("input = %q, want empty", s.Input())
	}
}

func TestSession_SubmitBlank(t *testing.T) {
	s := NewSession(0)
	s.Type("   ")
	if _, _, ok := s.Submit(); ok {
		t.Error("blank line should not start a command")
	}
	if s.Busy() {
		t.Error("session should stay idle")
	}
	if got := texts(s.Lines()); len(got) != 1 || got[0] != "$    " {
		t.Errorf("lines = %q, want prompt echo", got)
	}
}

func TestSession_RunCommand(t *testing.T) {
	s := NewSession(0)
	s.Type(" echo hi ")
	id, cmd, ok := s.Submit()
	if !ok || cmd != "echo hi" {
		t.Fatalf("Submit = %d %q %v", id, cmd, ok)
	}
	if !s.Busy() {
		t.Fatal("session should be busy")
	}

	s.Output(id, Line{Stream: Stdout, Text: "hi"})
	s.Output(id+1, Line{Stream: Stdout, Text: "stray"})
	if _, _, ok := s.Exit(id, 0, nil); ok {
		t.Error("nothing queued, no next command expected")
	}
	if s.Busy() {
		t.Error("session should be idle after exit")
	}

	want := []string{"$  echo hi ", "hi"}
	got := texts(s.Lines())
	if len(got) != len(want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSession_KeystrokesBufferedWhileBusy(t *testing.T) {
	s := NewSession(0)
	s.Type("sleep 1")
	id, _, _ := s.Submit()

	s.Type("echo next")
	if s.Input() != "echo next" {
		t.Fatalf("input while busy = %q, keystrokes must not be dropped", s.Input())
	}
	if _, _, ok := s.Submit(); ok {
		t.Fatal("submit while busy must queue, not start")
	}
	if q := s.Queued(); len(q) != 1 || q[0] != "echo next" {
		t.Fatalf("queue = %v", q)
	}

	nextID, next, ok := s.Exit(id, 0, nil)
	if !ok || next != "echo next" {
		t.Fatalf("Exit = %d %q %v, want queued command", nextID, next, ok)
	}
	if nextID == id {
		t.Error("queued command needs a fresh id")
	}
	if running, cmd, _ := s.Running(); running != nextID || cmd != "echo next" {
		t.Errorf("running = %d %q", running, cmd)
	}
	if len(s.Queued()) != 0 {
		t.Error("queue should be drained")
	}
}

func TestSession_DropQueued(t *testing.T) {
	s := NewSession(0)
	s.Type("sleep 1")
	id, _, _ := s.Submit()
	for _, line := range []string{"make", "make test"} {
		s.Type(line)
		s.Submit()
	}

	if n := s.DropQueued(); n != 2 {
		t.Fatalf("DropQueued = %d, want 2", n)
	}
	if _, _, ok := s.Exit(id, 0, nil); ok {
		t.Error("dropped line started after exit")
	}
	if s.Busy() {
		t.Error("session busy after exit with empty queue")
	}
	if n := s.DropQueued(); n != 0 {
		t.Errorf("second DropQueued = %d, want 0", n)
	}
}

func TestSession_ExitStatusLines(t *testing.T) {
	tests := []struct {
		name   string
		output bool
		code   int
		err    error
		want   string
	}{
		{"failure without output", false, 2, nil, "Command failed with exit code 2"},
		{"failure with output", true, 2, nil, ""},
		{"success", false, 0, nil, ""},
		{"spawn error", false, -1, errors.New("exec: not found"), "Error: exec: not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(0)
			s.Type("cmd")
			id, _, _ := s.Submit()
			if tt.output {
				s.Output(id, Line{Stream: Stderr, Text: "boom"})
			}
			s.Exit(id, tt.code, tt.err)

			lines := s.Lines()
			last := lines[len(lines)-1]
			if tt.want == "" {
				for _, l := range lines {
					if strings.HasPrefix(l.Text, "Command failed") || strings.HasPrefix(l.Text, "Error:") {
						t.Errorf("unexpected status line %q", l.Text)
					}
				}
				return
			}
			if last.Text != tt.want || last.Stream != Stderr {
				t.Errorf("last line = %+v, want stderr %q", last, tt.want)
			}
		})
	}
}

func TestSession_ExitStaleID(t *testing.T) {
	s := NewSession(0)
	s.Type("a")
	id, _, _ := s.Submit()
	if _, _, ok := s.Exit(id+7, 0, nil); ok {
		t.Error("exit for unknown id should be ignored")
	}
	if !s.Busy() {
		t.Error("unknown id must not clear the running command")
	}
}

func TestSession_Scrollback(t *testing.T) {
	s := NewSession(3)
	for _, l := range []string{"1", "2", "3", "4", "5"} {
		s.Write(l)
	}
	got := texts(s.Lines())
	if len(got) != 3 || got[0] != "3" || got[2] != "5" {
		t.Errorf("lines = %v, want last three", got)
	}
	s.Clear()
	if len(s.Lines()) != 0 {
		t.Error("Clear should empty scrollback")
	}
}

func TestSession_SetInput(t *testing.T) {
	s := NewSession(0)
	s.Type("old")
	s.SetInput("new\tvalue")
	if s.Input() != "newvalue" {
		t.Errorf("input = %q", s.Input())
	}
}

func TestSession_History(t *testing.T) {
	s := NewSession(0)
	for _, cmd := range []string{"ls", "ls", "go test ./..."} {
		s.SetInput(cmd)
		id, _, ok := s.Submit()
		if ok {
			s.Exit(id, 0, nil)
		}
	}

	s.HistoryPrev()
	if got := s.Input(); got != "go test ./..." {
		t.Fatalf("first prev = %q", got)
	}
	s.HistoryPrev()
	if got := s.Input(); got != "ls" {
		t.Fatalf("second prev = %q, want ls (duplicates collapsed)", got)
	}
	s.HistoryPrev()
	if got := s.Input(); got != "ls" {
		t.Errorf("prev at oldest = %q", got)
	}
	s.HistoryNext()
	s.HistoryNext()
	if got := s.Input(); got != "" {
		t.Errorf("next past newest = %q, want empty", got)
	}
}
