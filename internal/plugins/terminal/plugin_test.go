package terminal

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/codeshell/internal/config"
	"github.com/marcus/codeshell/internal/keymap"
	"github.com/marcus/codeshell/internal/logbuf"
	"github.com/marcus/codeshell/internal/plugin"
	"github.com/marcus/codeshell/internal/state"
	term "github.com/marcus/codeshell/internal/terminal"
)

// script is the canned result of one command.
type script struct {
	lines    []term.Line
	code     int
	startErr error
}

// fakeRunner replays scripts; every process has already exited when Start
// returns.
type fakeRunner struct {
	scripts map[string]script
	started []string
	dirs    []string
}

func (f *fakeRunner) Start(_ context.Context, command, dir string) (*term.Process, error) {
	f.started = append(f.started, command)
	f.dirs = append(f.dirs, dir)
	s := f.scripts[command]
	if s.startErr != nil {
		return nil, s.startErr
	}
	proc, send, finish := term.NewProcess(len(s.lines) + 1)
	for _, l := range s.lines {
		send(l)
	}
	finish(s.code, nil)
	return proc, nil
}

func newTestContext(t *testing.T) *plugin.Context {
	t.Helper()
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	buf := logbuf.New(10)
	return &plugin.Context{
		WorkDir:   "/ws",
		Config:    config.Default(),
		State:     store,
		Keymap:    km,
		Logger:    slog.New(slog.NewTextHandler(buf, nil)),
		LogBuffer: buf,
	}
}

func newTestPlugin(t *testing.T, r term.Runner) *Plugin {
	t.Helper()
	p := NewWithRunner(r)
	if err := p.Init(newTestContext(t)); err != nil {
		t.Fatal(err)
	}
	p.SetFocused(true)
	return p
}

// run executes cmd, feeding pane messages back until the chain ends.
func run(p *Plugin, cmd tea.Cmd) {
	for cmd != nil {
		_, cmd = p.Update(cmd())
	}
}

func typeLine(p *Plugin, s string) tea.Cmd {
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func texts(p *Plugin) []string {
	var out []string
	for _, l := range p.Session().Lines() {
		out = append(out, l.Text)
	}
	return out
}

func TestRun_StreamsOutputInOrder(t *testing.T) {
	r := &fakeRunner{scripts: map[string]script{
		"ls": {lines: []term.Line{{Stream: term.Stdout, Text: "a.txt"}, {Stream: term.Stderr, Text: "warn"}}},
	}}
	p := newTestPlugin(t, r)

	run(p, typeLine(p, "ls"))

	want := []string{"cwd: /ws", "$ ls", "a.txt", "warn"}
	if got := texts(p); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if p.Session().Busy() {
		t.Error("session still busy after exit")
	}
	if !reflect.DeepEqual(r.dirs, []string{"/ws"}) {
		t.Errorf("dirs = %v", r.dirs)
	}
}

func TestRun_QueuesWhileBusy(t *testing.T) {
	r := &fakeRunner{scripts: map[string]script{
		"first":  {lines: []term.Line{{Text: "1"}}},
		"second": {lines: []term.Line{{Text: "2"}}},
	}}
	p := newTestPlugin(t, r)

	first := typeLine(p, "first")
	if second := typeLine(p, "second"); second != nil {
		t.Fatal("second line started while first is running")
	}
	if got := p.Session().Queued(); !reflect.DeepEqual(got, []string{"second"}) {
		t.Fatalf("queued = %v", got)
	}

	run(p, first)

	want := []string{"cwd: /ws", "$ first", "$ second", "1", "2"}
	if got := texts(p); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if !reflect.DeepEqual(r.started, []string{"first", "second"}) {
		t.Errorf("started = %v", r.started)
	}
}

func TestRun_FailureLines(t *testing.T) {
	r := &fakeRunner{scripts: map[string]script{
		"false":   {code: 1},
		"missing": {startErr: errors.New("exec: not found")},
	}}
	p := newTestPlugin(t, r)

	run(p, typeLine(p, "false"))
	run(p, typeLine(p, "missing"))

	want := []string{
		"cwd: /ws",
		"$ false", "Command failed with exit code 1",
		"$ missing", "Error: exec: not found",
	}
	if got := texts(p); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestKill_RealProcess(t *testing.T) {
	p := newTestPlugin(t, term.NewShellRunner("sh"))
	p.workDir = t.TempDir()

	cmd := typeLine(p, "exec sleep 30")
	_, listen := p.Update(cmd())
	if p.proc == nil {
		t.Fatal("process not tracked after start")
	}

	p.Update(tea.KeyMsg{Type: tea.KeyCtrlX})

	done := make(chan tea.Msg, 1)
	go func() { done <- listen() }()
	select {
	case m := <-done:
		p.Update(m)
	case <-time.After(5 * time.Second):
		t.Fatal("process not killed")
	}
	if p.Session().Busy() || p.proc != nil {
		t.Error("session still busy after kill")
	}
}

func TestTyping_BackspaceAndHistory(t *testing.T) {
	r := &fakeRunner{scripts: map[string]script{}}
	p := newTestPlugin(t, r)

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("echo")})
	p.Update(tea.KeyMsg{Type: tea.KeySpace})
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hix")})
	p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := p.Session().Input(); got != "echo hi" {
		t.Fatalf("input = %q", got)
	}
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(p, cmd)

	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := p.Session().Input(); got != "echo hi" {
		t.Errorf("history prev = %q", got)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := p.Session().Input(); got != "" {
		t.Errorf("history next = %q", got)
	}
}

func TestSwitchPanel_ShowsLogAndPersists(t *testing.T) {
	p := newTestPlugin(t, &fakeRunner{})
	p.ctx.Logger.Info("hello from the log")

	p.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if p.Panel() != state.PanelOutput {
		t.Fatalf("panel = %q", p.Panel())
	}
	if p.ConsumesTextInput() {
		t.Error("output panel should not take text input")
	}
	v := ansi.Strip(p.View(80, 10))
	if !strings.Contains(v, "hello from the log") {
		t.Errorf("output panel missing log line:\n%s", v)
	}
	if got := p.ctx.State.Terminal().ActivePanel; got != state.PanelOutput {
		t.Errorf("persisted panel = %q", got)
	}

	// Typing is ignored on the output panel.
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if p.Session().Input() != "" {
		t.Error("typed into the output panel")
	}
}

func TestResizeAndVisibility(t *testing.T) {
	p := newTestPlugin(t, &fakeRunner{})
	h := p.PreferredHeight()

	p.Update(tea.KeyMsg{Type: tea.KeyCtrlUp})
	if p.PreferredHeight() != h+heightStep {
		t.Errorf("height = %d, want %d", p.PreferredHeight(), h+heightStep)
	}
	for range 100 {
		p.Update(tea.KeyMsg{Type: tea.KeyCtrlDown})
	}
	if p.PreferredHeight() != minHeight {
		t.Errorf("height = %d, want %d", p.PreferredHeight(), minHeight)
	}

	visible := p.Visible()
	p.ToggleVisible()
	ts := p.ctx.State.Terminal()
	if ts.Visible == nil || *ts.Visible == visible || ts.Height != minHeight {
		t.Errorf("persisted = %+v", ts)
	}
}

func TestInit_RestoresSavedState(t *testing.T) {
	ctx := newTestContext(t)
	hidden := false
	if err := ctx.State.SetTerminal(state.TerminalState{Visible: &hidden, Height: 20, ActivePanel: state.PanelOutput}); err != nil {
		t.Fatal(err)
	}
	p := NewWithRunner(&fakeRunner{})
	if err := p.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if p.Visible() || p.PreferredHeight() != 20 || p.Panel() != state.PanelOutput {
		t.Errorf("visible=%v height=%d panel=%q", p.Visible(), p.PreferredHeight(), p.Panel())
	}
}

func TestInit_WorkspaceSwitchKeepsScrollback(t *testing.T) {
	r := &fakeRunner{scripts: map[string]script{"pwd": {lines: []term.Line{{Text: "/ws"}}}}}
	p := newTestPlugin(t, r)
	run(p, typeLine(p, "pwd"))

	ctx := *p.ctx
	ctx.WorkDir = "/other"
	p.Stop()
	if err := p.Init(&ctx); err != nil {
		t.Fatal(err)
	}
	run(p, typeLine(p, "pwd"))

	got := texts(p)
	if got[len(got)-3] != "cwd: /other" {
		t.Errorf("lines = %q", got)
	}
	if !reflect.DeepEqual(r.dirs, []string{"/ws", "/other"}) {
		t.Errorf("dirs = %v", r.dirs)
	}
}

func TestInit_WorkspaceSwitchDropsQueuedLines(t *testing.T) {
	r := &fakeRunner{scripts: map[string]script{
		"first":  {lines: []term.Line{{Text: "1"}}},
		"second": {lines: []term.Line{{Text: "2"}}},
	}}
	p := newTestPlugin(t, r)

	first := typeLine(p, "first")
	typeLine(p, "second")

	ctx := *p.ctx
	ctx.WorkDir = "/other"
	p.Stop()
	if err := p.Init(&ctx); err != nil {
		t.Fatal(err)
	}
	run(p, first)

	if !reflect.DeepEqual(r.started, []string{"first"}) {
		t.Errorf("started = %v, want only first", r.started)
	}
	if len(p.Session().Queued()) != 0 {
		t.Errorf("queue = %v", p.Session().Queued())
	}
	if got := strings.Join(texts(p), "\n"); !strings.Contains(got, "dropped 1 queued command(s)") {
		t.Errorf("lines = %q", texts(p))
	}
}

func TestView_RendersPromptAndScroll(t *testing.T) {
	lines := make([]term.Line, 50)
	for i := range lines {
		lines[i] = term.Line{Text: "line"}
	}
	r := &fakeRunner{scripts: map[string]script{"many": {lines: lines}}}
	p := newTestPlugin(t, r)
	run(p, typeLine(p, "many"))
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("next")})

	v := ansi.Strip(p.View(60, 12))
	if !strings.Contains(v, "$ next") {
		t.Errorf("input line missing:\n%s", v)
	}
	if !strings.Contains(v, "TERMINAL") || !strings.Contains(v, "OUTPUT") {
		t.Errorf("panel tabs missing:\n%s", v)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	v = ansi.Strip(p.View(60, 12))
	if strings.Contains(v, "$ next") {
		t.Errorf("scrolled view still shows the input line:\n%s", v)
	}
}
