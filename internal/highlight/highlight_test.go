package highlight

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestLanguage(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"main.go", "go"},
		{"App.TSX", "typescript"},
		{"index.js", "javascript"},
		{"README.md", "markdown"},
		{"deploy.yml", "yaml"},
		{"run.sh", "shell"},
		{"notes", "plaintext"},
		{"archive.unknownext", "plaintext"},
	}
	for _, tt := range tests {
		if got := Language(tt.name); got != tt.want {
			t.Errorf("Language(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestIsMarkdown(t *testing.T) {
	if !IsMarkdown("docs/GUIDE.md") {
		t.Error("expected .md to be markdown")
	}
	if IsMarkdown("main.go") {
		t.Error("main.go is not markdown")
	}
}

func TestPlainLines(t *testing.T) {
	got := PlainLines("a\r\n\tb\n")
	want := []string{"a", "    b"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCodePreservesText(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	r := NewRenderer("monokai", "dark")
	lines := r.Code("main.go", 1, src)

	plain := PlainLines(src)
	if len(lines) != len(plain) {
		t.Fatalf("got %d lines, want %d", len(lines), len(plain))
	}
	for i := range plain {
		if got := ansi.Strip(lines[i]); got != plain[i] {
			t.Errorf("line %d = %q, want %q", i, got, plain[i])
		}
	}
}

func TestCodeCachesByFingerprint(t *testing.T) {
	r := NewRenderer("", "")
	first := r.Code("a.go", 7, "package a\n")
	second := r.Code("a.go", 7, "package changed\n")
	if ansi.Strip(second[0]) != ansi.Strip(first[0]) {
		t.Error("expected cached render for same fingerprint")
	}

	r.Forget("a.go")
	third := r.Code("a.go", 7, "package changed\n")
	if ansi.Strip(third[0]) != "package changed" {
		t.Errorf("after Forget got %q", ansi.Strip(third[0]))
	}
}

func TestCodeUnknownLanguage(t *testing.T) {
	r := NewRenderer("monokai", "dark")
	lines := r.Code("notes", 1, "just words\nmore words")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if ansi.Strip(lines[1]) != "more words" {
		t.Errorf("line 1 = %q", ansi.Strip(lines[1]))
	}
}

func TestMarkdown(t *testing.T) {
	r := NewRenderer("monokai", "notty")
	lines, err := r.Markdown("README.md", 1, "# Title\n\nSome *body* text.\n", 60)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	joined := ansi.Strip(strings.Join(lines, "\n"))
	if !strings.Contains(joined, "Title") || !strings.Contains(joined, "body") {
		t.Errorf("rendered markdown missing text:\n%s", joined)
	}
}

func TestActiveSGR(t *testing.T) {
	tests := []struct {
		name   string
		active string
		line   string
		want   string
	}{
		{"no sequences", "", "plain", ""},
		{"open colour", "", "\x1b[38;5;59m/* start", "\x1b[38;5;59m"},
		{"closed colour", "", "\x1b[38;5;59mx\x1b[0m y", ""},
		{"carried through", "\x1b[1m", "text", "\x1b[1m"},
		{"bare reset", "\x1b[1m", "a\x1b[m", ""},
		{"stacked", "\x1b[1m", "\x1b[3m", "\x1b[1m\x1b[3m"},
		{"reset then set", "\x1b[1m", "\x1b[0;32m", "\x1b[0;32m"},
		{"non-SGR ignored", "", "\x1b[2Kx", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := activeSGR(tt.active, tt.line); got != tt.want {
				t.Errorf("activeSGR(%q, %q) = %q, want %q", tt.active, tt.line, got, tt.want)
			}
		})
	}
}

func TestCodeMultiLineTokenKeepsColour(t *testing.T) {
	src := "/* first\nsecond */\npackage a\n"
	r := NewRenderer("monokai", "dark")
	lines := r.Code("a.go", 1, src)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if ansi.Strip(lines[1]) != "second */" {
		t.Fatalf("line 1 = %q", ansi.Strip(lines[1]))
	}
	if !strings.HasPrefix(lines[0], "\x1b[") {
		t.Skip("style emitted no colour for comments")
	}
	if !strings.HasPrefix(lines[1], "\x1b[") {
		t.Errorf("second comment line lost its colour: %q", lines[1])
	}
	if ansi.Strip(lines[2]) != "package a" {
		t.Errorf("line 2 = %q", ansi.Strip(lines[2]))
	}
}
