// Package highlight turns file content into terminal-ready lines: chroma
// syntax highlighting for code and glamour rendering for markdown.
package highlight

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
)

const resetSeq = "\x1b[0m"

// languageByExt maps common extensions to editor language ids.
var languageByExt = map[string]string{
	"js":    "javascript",
	"jsx":   "javascript",
	"ts":    "typescript",
	"tsx":   "typescript",
	"json":  "json",
	"html":  "html",
	"css":   "css",
	"scss":  "scss",
	"less":  "less",
	"md":    "markdown",
	"py":    "python",
	"rs":    "rust",
	"go":    "go",
	"java":  "java",
	"c":     "c",
	"cpp":   "cpp",
	"cs":    "csharp",
	"php":   "php",
	"rb":    "ruby",
	"swift": "swift",
	"kt":    "kotlin",
	"sql":   "sql",
	"sh":    "shell",
	"bash":  "shell",
	"yml":   "yaml",
	"yaml":  "yaml",
	"xml":   "xml",
	"toml":  "toml",
	"ini":   "ini",
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// Language returns the language id for a file name, "plaintext" if unknown.
func Language(name string) string {
	if lang, ok := languageByExt[Extension(name)]; ok {
		return lang
	}
	if lexer := lexers.Match(filepath.Base(name)); lexer != nil {
		return strings.ToLower(lexer.Config().Name)
	}
	return "plaintext"
}

// IsMarkdown reports whether name is rendered with glamour.
func IsMarkdown(name string) bool {
	switch Extension(name) {
	case "md", "markdown", "mdx":
		return true
	}
	return false
}

// PlainLines splits content into display lines, ignoring one trailing newline
// and expanding tabs.
func PlainLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.ReplaceAll(strings.TrimSuffix(l, "\r"), "\t", "    ")
	}
	return lines
}

type cacheKey struct {
	path        string
	fingerprint uint64
	markdown    bool
	width       int
}

// Renderer renders and caches content. Safe for concurrent use.
type Renderer struct {
	syntaxTheme   string
	markdownStyle string

	mu        sync.Mutex
	cache     map[cacheKey][]string
	glamours  map[int]*glamour.TermRenderer
	maxCached int
}

// NewRenderer returns a Renderer using a chroma style and a glamour standard
// style ("dark", "light", "notty", ...).
func NewRenderer(syntaxTheme, markdownStyle string) *Renderer {
	if syntaxTheme == "" {
		syntaxTheme = "monokai"
	}
	if markdownStyle == "" {
		markdownStyle = "dark"
	}
	return &Renderer{
		syntaxTheme:   syntaxTheme,
		markdownStyle: markdownStyle,
		cache:         make(map[cacheKey][]string),
		glamours:      make(map[int]*glamour.TermRenderer),
		maxCached:     32,
	}
}

// Code returns syntax-highlighted lines for content, one per PlainLines entry.
// On any highlighting failure the plain lines are returned.
func (r *Renderer) Code(path string, fingerprint uint64, content string) []string {
	key := cacheKey{path: path, fingerprint: fingerprint}
	if lines, ok := r.cached(key); ok {
		return lines
	}
	lines := highlightCode(path, content, r.syntaxTheme)
	r.store(key, lines)
	return lines
}

// Markdown returns glamour-rendered lines wrapped at width.
func (r *Renderer) Markdown(path string, fingerprint uint64, content string, width int) ([]string, error) {
	if width < 20 {
		width = 20
	}
	key := cacheKey{path: path, fingerprint: fingerprint, markdown: true, width: width}
	if lines, ok := r.cached(key); ok {
		return lines, nil
	}

	tr, err := r.glamourFor(width)
	if err != nil {
		return nil, err
	}
	out, err := tr.Render(content)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	r.store(key, lines)
	return lines, nil
}

func (r *Renderer) glamourFor(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.glamours[width]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.markdownStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.glamours[width] = tr
	return tr, nil
}

func (r *Renderer) cached(key cacheKey) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines, ok := r.cache[key]
	return lines, ok
}

func (r *Renderer) store(key cacheKey, lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cache) >= r.maxCached {
		r.cache = make(map[cacheKey][]string)
	}
	r.cache[key] = lines
}

// Forget drops cached renders for path.
func (r *Renderer) Forget(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.cache {
		if k.path == path {
			delete(r.cache, k)
		}
	}
}

func highlightCode(path, content, theme string) []string {
	plain := PlainLines(content)

	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		return plain
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get(theme)
	if style == nil {
		style = chromastyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, strings.Join(plain, "\n"))
	if err != nil {
		return plain
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return plain
	}

	out := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	lines := make([]string, len(plain))
	active := ""
	for i := range plain {
		if i >= len(out) {
			lines[i] = plain[i]
			continue
		}
		// Each line stands alone in the viewport, so a token spanning lines
		// (block comments, raw strings) reopens its colour on every line.
		lines[i] = active + out[i] + resetSeq
		active = activeSGR(active, out[i])
	}
	return lines
}

// activeSGR returns the SGR state in effect after line, starting from
// active. A reset clears it; any other SGR sequence is added to it.
func activeSGR(active, line string) string {
	for {
		start := strings.Index(line, "\x1b[")
		if start < 0 {
			return active
		}
		line = line[start+2:]
		end := strings.IndexFunc(line, func(r rune) bool {
			return (r < '0' || r > '9') && r != ';'
		})
		if end < 0 {
			return active
		}
		if line[end] != 'm' {
			line = line[end:]
			continue
		}
		params := line[:end]
		seq := "\x1b[" + params + "m"
		switch {
		case params == "" || params == "0":
			active = ""
		case strings.HasPrefix(params, "0;"):
			active = seq
		default:
			active += seq
		}
		line = line[end+1:]
	}
}
