package highlight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenizer counts calls and optionally blocks until gate is closed.
type fakeTokenizer struct {
	calls atomic.Int64
	gate  chan struct{}
	fail  bool
}

func (f *fakeTokenizer) Highlight(code, grammar, theme string) (string, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.fail {
		return "", errors.New("boom")
	}
	return fmt.Sprintf(`<pre style="color:#fff;background-color:#282a36;"><code data-lang=%q data-theme=%q>%s</code></pre>`, grammar, theme, code), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHighlighter(t *testing.T, tok Tokenizer, loadErr error) (*Highlighter, *atomic.Int64) {
	t.Helper()
	var loads atomic.Int64
	engine := NewEngine(func(ctx context.Context) (Tokenizer, error) {
		loads.Add(1)
		if loadErr != nil {
			return nil, loadErr
		}
		return tok, nil
	}, quietLogger())
	return New(engine, NewCache(), quietLogger()), &loads
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"":          "text",
		"  ":        "text",
		"sh":        "shellscript",
		"Shell":     "shellscript",
		"zsh":       "shellscript",
		"bash":      "bash",
		"js":        "javascript",
		"mjs":       "javascript",
		"cjs":       "javascript",
		"TS":        "typescript",
		"tsx":       "tsx",
		"py":        "python",
		"yml":       "yaml",
		"md":        "markdown",
		"cs":        "csharp",
		"c#":        "csharp",
		"go":        "go",
		"plaintext": "text",
		"cobol":     "text",
		"brainfuck": "text",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLanguage(in), "input %q", in)
	}
}

func TestThemeMappingIsTotal(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range Themes() {
		name := EngineTheme(id)
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "engine theme %q mapped twice", name)
		seen[name] = true
		assert.Equal(t, id, ParseTheme(string(id)))
	}
	assert.Equal(t, DefaultTheme, ParseTheme("solarized"))
	assert.Equal(t, EngineTheme(DefaultTheme), EngineTheme(ThemeID("nope")))
}

func TestHighlight_SecondCallIsMemoized(t *testing.T) {
	tok := &fakeTokenizer{}
	h, loads := newTestHighlighter(t, tok, nil)
	ctx := context.Background()

	first := h.Highlight(ctx, "fmt.Println()", "go", ThemeDracula)
	second := h.Highlight(ctx, "fmt.Println()", "go", ThemeDracula)

	assert.False(t, first.Plain)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, tok.calls.Load())
	assert.EqualValues(t, 1, loads.Load())

	cached, ok := h.Lookup("fmt.Println()", "go", ThemeDracula)
	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestHighlight_AliasesShareKey(t *testing.T) {
	tok := &fakeTokenizer{}
	h, _ := newTestHighlighter(t, tok, nil)
	ctx := context.Background()

	h.Highlight(ctx, "echo hi", "sh", ThemeDefault)
	h.Highlight(ctx, "echo hi", "shell", ThemeDefault)
	h.Highlight(ctx, "echo hi", "ZSH", ThemeDefault)

	assert.EqualValues(t, 1, tok.calls.Load())
	assert.Equal(t, 1, h.Cache().Len())
}

func TestHighlight_ThemeIsPartOfKey(t *testing.T) {
	tok := &fakeTokenizer{}
	h, _ := newTestHighlighter(t, tok, nil)
	ctx := context.Background()

	h.Highlight(ctx, "x", "go", ThemeDefault)
	h.Highlight(ctx, "x", "go", ThemeAuraDark)

	assert.EqualValues(t, 2, tok.calls.Load())
}

func TestHighlight_UnknownThemeSharesDefaultEntry(t *testing.T) {
	tok := &fakeTokenizer{}
	h, _ := newTestHighlighter(t, tok, nil)

	a := h.Highlight(context.Background(), "x", "go", ThemeID("solarized"))
	b := h.Highlight(context.Background(), "x", "go", ThemeDefault)

	assert.Equal(t, a, b)
	assert.Equal(t, int64(1), tok.calls.Load())
	assert.Equal(t, 1, h.Cache().Len())

	_, ok := h.Lookup("x", "go", ThemeID("solarized"))
	assert.True(t, ok)
}

func TestHighlight_ConcurrentRequestsTokenizeOnce(t *testing.T) {
	tok := &fakeTokenizer{gate: make(chan struct{})}
	h, loads := newTestHighlighter(t, tok, nil)

	const n = 16
	results := make([]Result, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = h.Highlight(context.Background(), "SELECT 1", "sql", ThemeOneDarkPro)
		}()
	}

	// Let the callers pile up on the shared flight before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(tok.gate)
	wg.Wait()

	assert.EqualValues(t, 1, tok.calls.Load())
	assert.EqualValues(t, 1, loads.Load())
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestHighlight_StripsBackground(t *testing.T) {
	h, _ := newTestHighlighter(t, &fakeTokenizer{}, nil)

	r := h.Highlight(context.Background(), "a", "go", ThemeDracula)

	assert.NotContains(t, r.HTML, "#282a36")
	assert.Contains(t, r.HTML, "background-color:transparent;")
	assert.Contains(t, r.HTML, "color:#fff;")
}

func TestHighlight_TokenizerFailureIsCachedAsPlain(t *testing.T) {
	tok := &fakeTokenizer{fail: true}
	h, _ := newTestHighlighter(t, tok, nil)
	ctx := context.Background()

	r := h.Highlight(ctx, "x", "rust", ThemeDefault)
	assert.True(t, r.Plain)
	assert.Empty(t, r.HTML)

	r = h.Highlight(ctx, "x", "rust", ThemeDefault)
	assert.True(t, r.Plain)
	assert.EqualValues(t, 1, tok.calls.Load())
}

func TestHighlight_EngineFailureDegradesAndLoadsOnce(t *testing.T) {
	h, loads := newTestHighlighter(t, nil, errors.New("no grammars"))
	ctx := context.Background()

	for range 3 {
		r := h.Highlight(ctx, "x", "go", ThemeDefault)
		assert.True(t, r.Plain)
	}
	assert.EqualValues(t, 1, loads.Load())
	assert.Equal(t, 0, h.Cache().Len())
}

func TestHighlight_CancelledCallerGetsPlain(t *testing.T) {
	tok := &fakeTokenizer{gate: make(chan struct{})}
	h, _ := newTestHighlighter(t, tok, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := h.Highlight(ctx, "x", "go", ThemeDefault)
	assert.True(t, r.Plain)

	// The shared flight still completes for later callers.
	close(tok.gate)
	r = h.Highlight(context.Background(), "x", "go", ThemeDefault)
	assert.False(t, r.Plain)
	assert.EqualValues(t, 1, tok.calls.Load())
}

func TestEngine_SharesPendingLoad(t *testing.T) {
	release := make(chan struct{})
	var loads atomic.Int64
	e := NewEngine(func(ctx context.Context) (Tokenizer, error) {
		loads.Add(1)
		<-release
		return &fakeTokenizer{}, nil
	}, quietLogger())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := e.Get(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, tok)
		}()
	}
	assert.False(t, e.Loaded())
	close(release)
	wg.Wait()

	assert.True(t, e.Loaded())
	assert.EqualValues(t, 1, loads.Load())
}

func TestCodeView_CachedIsImmediate(t *testing.T) {
	h, _ := newTestHighlighter(t, &fakeTokenizer{}, nil)
	want := h.Highlight(context.Background(), "x", "go", ThemeDefault)

	v := NewCodeView(h, "x", "go", ThemeDefault)

	assert.True(t, v.Ready())
	assert.Equal(t, want, v.Current())
}

func TestCodeView_PlaceholderThenResult(t *testing.T) {
	h, _ := newTestHighlighter(t, &fakeTokenizer{}, nil)
	v := NewCodeView(h, "x", "go", ThemeDefault)

	assert.False(t, v.Ready())
	assert.True(t, v.Current().Plain)
	assert.Equal(t, "x", v.Code())

	done := make(chan Result, 1)
	v.Start(context.Background(), func(r Result) { done <- r })

	select {
	case r := <-done:
		assert.False(t, r.Plain)
		assert.Equal(t, r, v.Current())
	case <-time.After(2 * time.Second):
		t.Fatal("view never resolved")
	}
}

func TestCodeView_DisposeDropsLateResult(t *testing.T) {
	tok := &fakeTokenizer{gate: make(chan struct{})}
	h, _ := newTestHighlighter(t, tok, nil)
	v := NewCodeView(h, "x", "go", ThemeDefault)

	var called atomic.Bool
	v.Start(context.Background(), func(Result) { called.Store(true) })
	v.Dispose()
	close(tok.gate)

	// The flight still fills the cache for other views.
	require.Eventually(t, func() bool {
		_, ok := h.Lookup("x", "go", ThemeDefault)
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.False(t, called.Load())
	assert.True(t, v.Current().Plain)
	assert.False(t, v.Ready())
}

func TestCodeView_RestartsAfterCallerCancel(t *testing.T) {
	tok := &fakeTokenizer{gate: make(chan struct{})}
	h, _ := newTestHighlighter(t, tok, nil)
	v := NewCodeView(h, "x", "go", ThemeDefault)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v.Start(ctx, func(Result) { t.Error("cancelled run must not deliver") })
	close(tok.gate)

	got := make(chan Result, 1)
	require.Eventually(t, func() bool {
		v.Start(context.Background(), func(r Result) { got <- r })
		return v.Ready()
	}, 2*time.Second, 5*time.Millisecond)

	r := <-got
	assert.False(t, r.Plain)
	assert.Equal(t, r, v.Current())
}

func TestPrewarm(t *testing.T) {
	tok := &fakeTokenizer{}
	h, _ := newTestHighlighter(t, tok, nil)
	jobs := []Job{{Code: "a", Language: "go"}, {Code: "b", Language: "py"}, {Code: "a", Language: "golang"}}

	plain, err := Prewarm(context.Background(), h, jobs, Themes(), 3)

	require.NoError(t, err)
	assert.Equal(t, 0, plain)
	// "golang" normalizes to text, so it is its own key.
	assert.Equal(t, len(jobs)*len(Themes()), h.Cache().Len())
	for _, th := range Themes() {
		_, ok := h.Lookup("b", "python", th)
		assert.True(t, ok)
	}
}

func TestChromaLoader_ResolvesEveryGrammar(t *testing.T) {
	tok, err := ChromaLoader(context.Background())
	require.NoError(t, err)

	for _, g := range Grammars {
		out, err := tok.Highlight("x := 1", g, EngineTheme(DefaultTheme))
		require.NoError(t, err, g)
		assert.Contains(t, out, "<pre", g)
	}

	_, err = tok.Highlight("x", "cobol", EngineTheme(DefaultTheme))
	assert.Error(t, err)
}

func TestTerminalLoader_EmitsANSI(t *testing.T) {
	tok, err := TerminalLoader(context.Background())
	require.NoError(t, err)

	out, err := tok.Highlight("func main() {}", "go", EngineTheme(DefaultTheme))
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "main")
	assert.NotContains(t, out, "<pre")
}

func TestSplitKey(t *testing.T) {
	theme, lang, code, ok := SplitKey(Key(ThemeOneDarkPro, "go", "a := 1\nb: 2"))
	require.True(t, ok)
	assert.Equal(t, ThemeOneDarkPro, theme)
	assert.Equal(t, "go", lang)
	assert.Equal(t, "a := 1\nb: 2", code)

	_, _, _, ok = SplitKey("no-newline")
	assert.False(t, ok)
}
