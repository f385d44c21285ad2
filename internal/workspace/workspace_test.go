package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcus/codeshell/internal/fsys"
)

// fakeLister serves canned listings and counts reads per path.
type fakeLister struct {
	dirs  map[string][]fsys.Entry
	fail  map[string]error
	calls map[string]int
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		dirs:  make(map[string][]fsys.Entry),
		fail:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeLister) dir(path string, entries ...fsys.Entry) {
	f.dirs[path] = entries
}

func (f *fakeLister) ListDirectory(path string) ([]fsys.Entry, error) {
	f.calls[path]++
	if err := f.fail[path]; err != nil {
		return nil, err
	}
	entries, ok := f.dirs[path]
	if !ok {
		return nil, &fsys.IOError{Op: "list", Path: path, Err: os.ErrNotExist}
	}
	// Hand out a copy so sorting never leaks into the fixture.
	out := make([]fsys.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func dirEntry(parent, name string) fsys.Entry {
	return fsys.Entry{Name: name, Path: parent + "/" + name, IsDir: true}
}

func fileEntry(parent, name string) fsys.Entry {
	return fsys.Entry{Name: name, Path: parent + "/" + name}
}

func childNames(n *FileNode) []string {
	var names []string
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// wsFixture is /ws with folders b, a and files z.txt, a.txt, reported in
// deliberately unsorted order.
func wsFixture() *fakeLister {
	f := newFakeLister()
	f.dir("/ws",
		dirEntry("/ws", "b"),
		fileEntry("/ws", "z.txt"),
		dirEntry("/ws", "a"),
		fileEntry("/ws", "a.txt"),
	)
	f.dir("/ws/a", fileEntry("/ws/a", "inner.go"), dirEntry("/ws/a", "deep"))
	f.dir("/ws/a/deep", fileEntry("/ws/a/deep", "leaf.txt"))
	f.dir("/ws/b")
	return f
}

func TestBuild_SortOrder(t *testing.T) {
	b := NewBuilder(wsFixture(), nil)
	root, errs := b.Build("/ws", "ws", 3)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := []string{"a", "b", "a.txt", "z.txt"}
	if got := childNames(root); !equalStrings(got, want) {
		t.Errorf("child order = %v, want %v", got, want)
	}
	if root.Kind != KindFolder || root.Load != LoadLoaded {
		t.Errorf("root = %v/%v, want folder/loaded", root.Kind, root.Load)
	}
	for _, c := range root.Children {
		if !c.IsFolder() && c.Children != nil {
			t.Errorf("file %q carries children", c.Name)
		}
	}
}

func TestBuild_FoldersFirstThenLexicographic(t *testing.T) {
	f := newFakeLister()
	f.dir("/r",
		fileEntry("/r", "main.go"),
		dirEntry("/r", "zeta"),
		fileEntry("/r", "go.mod"),
		dirEntry("/r", "cmd"),
		fileEntry("/r", "b.txt"),
		dirEntry("/r", "internal"),
	)
	f.dir("/r/zeta")
	f.dir("/r/cmd")
	f.dir("/r/internal")

	root, _ := NewBuilder(f, nil).Build("/r", "r", 1)

	seenFile := false
	var prev *FileNode
	for _, c := range root.Children {
		if c.IsFolder() && seenFile {
			t.Fatalf("folder %q after a file", c.Name)
		}
		if !c.IsFolder() {
			seenFile = true
		}
		if prev != nil && prev.IsFolder() == c.IsFolder() && !nameLess(prev.Name, c.Name) {
			t.Errorf("%q should sort before %q", c.Name, prev.Name)
		}
		prev = c
	}
}

func TestBuild_DepthLimit(t *testing.T) {
	f := wsFixture()
	b := NewBuilder(f, nil)

	tests := []struct {
		name      string
		maxDepth  int
		rootLoad  LoadState
		aLoad     LoadState
		deepLoad  LoadState
		deepReads int
	}{
		{"zero leaves root unloaded", 0, LoadUnloaded, LoadUnloaded, LoadUnloaded, 0},
		{"one loads root only", 1, LoadLoaded, LoadUnloaded, LoadUnloaded, 0},
		{"two loads first level", 2, LoadLoaded, LoadLoaded, LoadUnloaded, 0},
		{"three loads second level", 3, LoadLoaded, LoadLoaded, LoadLoaded, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.calls = make(map[string]int)
			root, _ := b.Build("/ws", "ws", tt.maxDepth)
			if root.Load != tt.rootLoad {
				t.Errorf("root load = %v, want %v", root.Load, tt.rootLoad)
			}
			if tt.rootLoad != LoadLoaded {
				if len(root.Children) != 0 {
					t.Error("unloaded root should have no children")
				}
				return
			}
			a := root.find("/ws/a")
			if a.Load != tt.aLoad {
				t.Errorf("a load = %v, want %v", a.Load, tt.aLoad)
			}
			if tt.aLoad == LoadLoaded {
				deep := root.find("/ws/a/deep")
				if deep.Load != tt.deepLoad {
					t.Errorf("deep load = %v, want %v", deep.Load, tt.deepLoad)
				}
			}
			if got := f.calls["/ws/a/deep"]; got != tt.deepReads {
				t.Errorf("deep reads = %d, want %d", got, tt.deepReads)
			}
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder(wsFixture(), nil)
	first, _ := b.Build("/ws", "ws", 3)
	second, _ := b.Build("/ws", "ws", 3)
	if !Equal(first, second) {
		t.Error("two builds of an unchanged tree differ")
	}
	if first == second {
		t.Error("builds should return fresh trees")
	}
}

func TestBuild_DeterministicOnDisk(t *testing.T) {
	tmpDir := t.TempDir()
	_ = os.MkdirAll(filepath.Join(tmpDir, "b", "nested"), 0755)
	_ = os.MkdirAll(filepath.Join(tmpDir, "a"), 0755)
	_ = os.WriteFile(filepath.Join(tmpDir, "z.txt"), []byte("z"), 0644)
	_ = os.WriteFile(filepath.Join(tmpDir, "a.txt"), []byte("a"), 0644)
	_ = os.WriteFile(filepath.Join(tmpDir, "b", "nested", "x.go"), []byte("x"), 0644)

	b := NewBuilder(fsys.NewDisk(true, 0), nil)
	first, errs := b.Build(tmpDir, "ws", 3)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	second, _ := b.Build(tmpDir, "ws", 3)
	if !Equal(first, second) {
		t.Error("rebuilding an unchanged directory produced a different tree")
	}
	if got, want := childNames(first), []string{"a", "b", "a.txt", "z.txt"}; !equalStrings(got, want) {
		t.Errorf("child order = %v, want %v", got, want)
	}
}

func TestBuild_PartialFailure(t *testing.T) {
	f := wsFixture()
	denied := &fsys.IOError{Op: "list", Path: "/ws/a", Err: os.ErrPermission}
	f.fail["/ws/a"] = denied

	root, errs := NewBuilder(f, nil).Build("/ws", "ws", 3)
	if len(errs) != 1 || !errors.Is(errs[0], os.ErrPermission) {
		t.Fatalf("errs = %v, want one permission error", errs)
	}

	a := root.find("/ws/a")
	if a.Load != LoadFailed {
		t.Errorf("a load = %v, want failed", a.Load)
	}
	if len(a.Children) != 0 {
		t.Errorf("failed folder has %d children", len(a.Children))
	}

	b := root.find("/ws/b")
	if b == nil || b.Load != LoadLoaded {
		t.Error("sibling folder b should still build")
	}
	if root.find("/ws/z.txt") == nil || root.find("/ws/a.txt") == nil {
		t.Error("sibling files should still build")
	}
}

func TestBuild_RootFailure(t *testing.T) {
	f := newFakeLister()
	root, errs := NewBuilder(f, nil).Build("/missing", "missing", 3)
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want 1", errs)
	}
	if root.Load != LoadFailed || len(root.Children) != 0 {
		t.Errorf("root = %v with %d children, want failed and empty", root.Load, len(root.Children))
	}
}

func TestExpandChildren(t *testing.T) {
	f := wsFixture()
	b := NewBuilder(f, nil)

	children, err := b.ExpandChildren("/ws")
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, 0, len(children))
	for _, c := range children {
		got = append(got, c.Name)
		if c.IsFolder() {
			if c.Load != LoadUnloaded || c.Children != nil {
				t.Errorf("folder %q should be unloaded with no children", c.Name)
			}
		} else if c.Children != nil {
			t.Errorf("file %q carries children", c.Name)
		}
	}
	if want := []string{"a", "b", "a.txt", "z.txt"}; !equalStrings(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if f.calls["/ws/a"] != 0 {
		t.Error("ExpandChildren must not recurse")
	}

	again, _ := b.ExpandChildren("/ws")
	if len(again) != len(children) {
		t.Fatal("second expansion differs in length")
	}
	for i := range again {
		if !Equal(again[i], children[i]) {
			t.Errorf("expansion not idempotent at %d", i)
		}
	}
}

func TestExpandChildren_Failure(t *testing.T) {
	f := newFakeLister()
	children, err := NewBuilder(f, nil).ExpandChildren("/gone")
	if err == nil {
		t.Fatal("expected error")
	}
	if children == nil || len(children) != 0 {
		t.Errorf("children = %v, want empty non-nil slice", children)
	}
}

func newLoadedState(t *testing.T, f *fakeLister, maxDepth int) (*State, *Builder) {
	t.Helper()
	b := NewBuilder(f, nil)
	root, _ := b.Build("/ws", "ws", maxDepth)
	s := NewState()
	s.SetRoot(root, "/ws")
	return s, b
}

func TestState_LoadStateMachine(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 1)

	a := s.Find("/ws/a")
	if a.Load != LoadUnloaded {
		t.Fatalf("a load = %v, want unloaded", a.Load)
	}

	req, err := s.MarkLoading("/ws/a")
	if err != nil {
		t.Fatalf("MarkLoading: %v", err)
	}
	if a.Load != LoadLoading {
		t.Errorf("a load = %v, want loading", a.Load)
	}
	if _, err := s.MarkLoading("/ws/a"); !errors.Is(err, ErrAlreadyLoading) {
		t.Errorf("second MarkLoading err = %v, want ErrAlreadyLoading", err)
	}

	children, _ := b.ExpandChildren(req.Path)
	if err := s.ApplyChildren(req, children); err != nil {
		t.Fatalf("ApplyChildren: %v", err)
	}
	if a.Load != LoadLoaded {
		t.Errorf("a load = %v, want loaded", a.Load)
	}
	if got, want := childNames(a), []string{"deep", "inner.go"}; !equalStrings(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
	if s.Find("/ws/a/deep") == nil {
		t.Error("applied children should be findable")
	}
	if _, err := s.MarkLoading("/ws/a"); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("MarkLoading on loaded folder err = %v, want ErrAlreadyLoaded", err)
	}
	if err := s.ApplyChildren(req, children); !errors.Is(err, ErrNotLoading) {
		t.Errorf("duplicate apply err = %v, want ErrNotLoading", err)
	}
}

func TestState_FailedIsRetryable(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 1)
	f.fail["/ws/a"] = &fsys.IOError{Op: "list", Path: "/ws/a", Err: os.ErrPermission}

	req, _ := s.MarkLoading("/ws/a")
	children, err := b.ExpandChildren(req.Path)
	if err := s.Resolve(req, children, err); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	a := s.Find("/ws/a")
	if a.Load != LoadFailed {
		t.Fatalf("a load = %v, want failed", a.Load)
	}
	if !errors.Is(s.Failure("/ws/a"), os.ErrPermission) {
		t.Errorf("failure = %v", s.Failure("/ws/a"))
	}

	delete(f.fail, "/ws/a")
	retry, err := s.MarkLoading("/ws/a")
	if err != nil {
		t.Fatalf("retry MarkLoading: %v", err)
	}
	if s.Failure("/ws/a") != nil {
		t.Error("failure should clear on retry")
	}
	children, err = b.ExpandChildren(retry.Path)
	if err := s.Resolve(retry, children, err); err != nil {
		t.Fatal(err)
	}
	if a.Load != LoadLoaded || len(a.Children) != 2 {
		t.Errorf("after retry a = %v with %d children", a.Load, len(a.Children))
	}
}

func TestState_StaleGenerationDiscarded(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 1)

	req, _ := s.MarkLoading("/ws/a")
	children, _ := b.ExpandChildren(req.Path)

	// Reopen the same directory: the pending result belongs to the old tree.
	newRoot, _ := b.Build("/ws", "ws", 1)
	s.SetRoot(newRoot, "/ws")

	if err := s.ApplyChildren(req, children); !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("err = %v, want ErrStaleGeneration", err)
	}
	if err := s.MarkFailed(req, errors.New("x")); !errors.Is(err, ErrStaleGeneration) {
		t.Errorf("MarkFailed err = %v, want ErrStaleGeneration", err)
	}
	if a := s.Find("/ws/a"); a.Load != LoadUnloaded {
		t.Errorf("new tree's a = %v, want unloaded", a.Load)
	}
	if req.Generation == s.Generation() {
		t.Error("generation should advance on SetRoot")
	}
}

func TestState_SetRootClearsExpanded(t *testing.T) {
	s, b := newLoadedState(t, wsFixture(), 3)
	s.SetExpanded("/ws/a", true)
	if !s.IsExpanded("/ws/a") {
		t.Fatal("a should be expanded")
	}
	root, _ := b.Build("/ws", "ws", 3)
	s.SetRoot(root, "/ws")
	if len(s.ExpandedPaths()) != 0 {
		t.Errorf("expanded = %v, want empty", s.ExpandedPaths())
	}
}

// Expanding a folder while its first expansion is pending must not issue a
// second read.
func TestState_OneInFlightExpansion(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 1)
	f.calls = make(map[string]int)

	var pending []Request
	expand := func(path string) {
		if req, ok := s.SetExpanded(path, true); ok {
			pending = append(pending, req)
		}
	}

	expand("/ws/a")
	s.SetExpanded("/ws/a", false)
	expand("/ws/a")
	expand("/ws/a")

	for _, req := range pending {
		children, err := b.ExpandChildren(req.Path)
		if err := s.Resolve(req, children, err); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}

	if got := f.calls["/ws/a"]; got != 1 {
		t.Errorf("reads of /ws/a = %d, want 1", got)
	}
	if len(pending) != 1 {
		t.Errorf("requests issued = %d, want 1", len(pending))
	}
}

func TestState_CollapseKeepsLoadedChildren(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 1)

	req, ok := s.ToggleExpanded("/ws/a")
	if !ok {
		t.Fatal("first expand should request a load")
	}
	children, err := b.ExpandChildren(req.Path)
	_ = s.Resolve(req, children, err)

	s.ToggleExpanded("/ws/a")
	if s.IsExpanded("/ws/a") {
		t.Fatal("toggle should collapse")
	}
	if s.Find("/ws/a").Load != LoadLoaded {
		t.Error("collapse must not discard children")
	}

	if _, ok := s.ToggleExpanded("/ws/a"); ok {
		t.Error("re-expanding a loaded folder must not request a fetch")
	}
	s.CollapseAll()
	if s.IsExpanded("/ws/a") || s.Find("/ws/a").Load != LoadLoaded {
		t.Error("CollapseAll should clear view state only")
	}
	if f.calls["/ws/a"] != 1 {
		t.Errorf("reads of /ws/a = %d, want 1", f.calls["/ws/a"])
	}
}

func TestState_ExpandFileIsIgnored(t *testing.T) {
	s, _ := newLoadedState(t, wsFixture(), 2)
	if _, ok := s.SetExpanded("/ws/a.txt", true); ok {
		t.Error("files cannot be expanded")
	}
	if s.IsExpanded("/ws/a.txt") {
		t.Error("file should not be marked expanded")
	}
	if _, err := s.MarkLoading("/ws/a.txt"); !errors.Is(err, ErrNotFolder) {
		t.Errorf("err = %v, want ErrNotFolder", err)
	}
	if _, err := s.MarkLoading("/nowhere"); !errors.Is(err, ErrUnknownPath) {
		t.Errorf("err = %v, want ErrUnknownPath", err)
	}
	if _, err := NewState().MarkLoading("/ws"); !errors.Is(err, ErrNoRoot) {
		t.Errorf("err = %v, want ErrNoRoot", err)
	}
}

func rowSummary(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		switch r.Kind {
		case RowLoading:
			out = append(out, fmt.Sprintf("%d:<loading>", r.Depth))
		case RowFailed:
			out = append(out, fmt.Sprintf("%d:<failed>", r.Depth))
		case RowEmpty:
			out = append(out, fmt.Sprintf("%d:<empty>", r.Depth))
		default:
			out = append(out, fmt.Sprintf("%d:%s", r.Depth, r.Node.Name))
		}
	}
	return out
}

func TestState_Rows(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 2)

	if got, want := rowSummary(s.Rows()), []string{"0:a", "0:b", "0:a.txt", "0:z.txt"}; !equalStrings(got, want) {
		t.Errorf("collapsed rows = %v, want %v", got, want)
	}

	s.SetExpanded("/ws/a", true)
	s.SetExpanded("/ws/b", true)
	want := []string{"0:a", "1:deep", "1:inner.go", "0:b", "1:<empty>", "0:a.txt", "0:z.txt"}
	if got := rowSummary(s.Rows()); !equalStrings(got, want) {
		t.Errorf("expanded rows = %v, want %v", got, want)
	}

	req, ok := s.SetExpanded("/ws/a/deep", true)
	if !ok {
		t.Fatal("deep should need a load")
	}
	rows := s.Rows()
	if got := rowSummary(rows)[2]; got != "2:<loading>" {
		t.Errorf("row under loading folder = %q", got)
	}

	children, err := b.ExpandChildren(req.Path)
	_ = s.Resolve(req, children, err)
	if got := rowSummary(s.Rows())[2]; got != "2:leaf.txt" {
		t.Errorf("row after load = %q", got)
	}

	s.SetActiveTab("/ws/a/inner.go")
	rows = s.Rows()
	idx := IndexOf(rows, "/ws/a/inner.go")
	if idx < 0 || !rows[idx].Active {
		t.Error("active tab's node should be highlighted")
	}
}

func TestState_RowsFailedPlaceholder(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 1)
	f.fail["/ws/a"] = errors.New("denied")

	req, _ := s.SetExpanded("/ws/a", true)
	children, err := b.ExpandChildren(req.Path)
	_ = s.Resolve(req, children, err)

	if got := rowSummary(s.Rows())[1]; got != "1:<failed>" {
		t.Errorf("row = %q, want failed placeholder", got)
	}
	if reqs := s.PendingLoads(); len(reqs) != 0 {
		t.Errorf("failed folders must not be retried implicitly, got %v", reqs)
	}
}

func TestState_RestoreAndPendingLoads(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 1)

	s.RestoreExpanded([]string{"/ws/a", "/ws/a/deep", "/elsewhere/x"})
	if s.IsExpanded("/elsewhere/x") {
		t.Error("paths outside the workspace must be ignored")
	}

	// Resolve pending loads until the restored set is fully materialized.
	for round := 0; round < 5; round++ {
		reqs := s.PendingLoads()
		if len(reqs) == 0 {
			break
		}
		for _, req := range reqs {
			children, err := b.ExpandChildren(req.Path)
			if err := s.Resolve(req, children, err); err != nil {
				t.Fatal(err)
			}
		}
	}

	want := []string{"0:a", "1:deep", "2:leaf.txt", "1:inner.go", "0:b", "0:a.txt", "0:z.txt"}
	if got := rowSummary(s.Rows()); !equalStrings(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if f.calls["/ws/a"] != 1 || f.calls["/ws/a/deep"] != 1 {
		t.Errorf("reads = %v, want one per folder", f.calls)
	}
}

func TestState_PendingLoadsUnloadedRoot(t *testing.T) {
	f := wsFixture()
	s, b := newLoadedState(t, f, 0)

	reqs := s.PendingLoads()
	if len(reqs) != 1 || reqs[0].Path != "/ws" {
		t.Fatalf("reqs = %v, want root load", reqs)
	}
	if again := s.PendingLoads(); len(again) != 0 {
		t.Errorf("root already loading, got %v", again)
	}
	children, err := b.ExpandChildren(reqs[0].Path)
	_ = s.Resolve(reqs[0], children, err)
	if len(s.Rows()) != 4 {
		t.Errorf("rows = %d, want 4", len(s.Rows()))
	}
}

func TestState_ExpandToDepth(t *testing.T) {
	s, _ := newLoadedState(t, wsFixture(), 3)
	s.ExpandToDepth(2)

	if !s.IsExpanded("/ws/a") || !s.IsExpanded("/ws/b") {
		t.Error("first-level folders should be expanded")
	}
	if s.IsExpanded("/ws/a/deep") {
		t.Error("second-level folders should stay collapsed")
	}
	if s.IsExpanded("/ws") {
		t.Error("root is implicit and never in the expanded set")
	}
}

func TestState_ExpandAncestors(t *testing.T) {
	s, _ := newLoadedState(t, wsFixture(), 3)
	s.ExpandAncestors("/ws/a/deep/leaf.txt")

	if got, want := s.ExpandedPaths(), []string{"/ws/a", "/ws/a/deep"}; !equalStrings(got, want) {
		t.Errorf("expanded = %v, want %v", got, want)
	}
	s.ExpandAncestors("/other/file")
	if len(s.ExpandedPaths()) != 2 {
		t.Error("paths outside the workspace must be ignored")
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		root, path string
		want       bool
	}{
		{"/ws", "/ws", true},
		{"/ws", "/ws/a", true},
		{"/ws", "/wsx/a", false},
		{"/ws", "/", false},
		{"", "/ws", false},
	}
	for _, tt := range tests {
		if got := within(tt.root, tt.path); got != tt.want {
			t.Errorf("within(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
		}
	}
}

// Folder results are judged by root generation alone; a Request must not be
// mistaken for a message carrying the workspace epoch.
func TestRequest_HasNoEpoch(t *testing.T) {
	var req any = Request{Path: "/ws/a", Generation: 3}
	if _, ok := req.(interface{ GetEpoch() uint64 }); ok {
		t.Error("Request exposes GetEpoch; generation and epoch are different counters")
	}
}
