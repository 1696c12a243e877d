package highlight

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// chromaLexerNames covers grammars whose Chroma lexer goes by another name.
var chromaLexerNames = map[string]string{
	"text":        "plaintext",
	"shellscript": "bash",
	"jsx":         "react",
	"tsx":         "typescript",
}

type chromaTokenizer struct {
	lexers    map[string]chroma.Lexer
	styles    map[string]*chroma.Style
	formatter chroma.Formatter
}

// ChromaLoader resolves a lexer for every supported grammar and a style for
// every application theme. It fails if any of them is missing.
func ChromaLoader(ctx context.Context) (Tokenizer, error) {
	return loadChroma(ctx, html.New(
		html.WithClasses(false),
		html.TabWidth(4),
	))
}

// TerminalLoader is ChromaLoader emitting 256-colour ANSI escapes instead of
// HTML. Its markup only suits terminal views, so it gets its own Highlighter
// and Cache.
func TerminalLoader(ctx context.Context) (Tokenizer, error) {
	return loadChroma(ctx, formatters.TTY256)
}

func loadChroma(ctx context.Context, formatter chroma.Formatter) (Tokenizer, error) {
	t := &chromaTokenizer{
		lexers:    make(map[string]chroma.Lexer, len(Grammars)),
		styles:    make(map[string]*chroma.Style),
		formatter: formatter,
	}

	for _, g := range Grammars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := g
		if alt, ok := chromaLexerNames[g]; ok {
			name = alt
		}
		lexer := lexers.Get(name)
		if lexer == nil {
			return nil, fmt.Errorf("highlight: load: no lexer for %q", g)
		}
		t.lexers[g] = chroma.Coalesce(lexer)
	}

	for _, id := range Themes() {
		name := EngineTheme(id)
		style, ok := styles.Registry[name]
		if !ok {
			return nil, fmt.Errorf("highlight: load: no style %q", name)
		}
		t.styles[name] = style
	}
	return t, nil
}

func (t *chromaTokenizer) Highlight(code, grammar, engineTheme string) (string, error) {
	lexer, ok := t.lexers[grammar]
	if !ok {
		return "", fmt.Errorf("highlight: unsupported grammar %q", grammar)
	}
	style, ok := t.styles[engineTheme]
	if !ok {
		return "", fmt.Errorf("highlight: unknown style %q", engineTheme)
	}

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("highlight: tokenise: %w", err)
	}
	var sb strings.Builder
	if err := t.formatter.Format(&sb, style, it); err != nil {
		return "", fmt.Errorf("highlight: format: %w", err)
	}
	return sb.String(), nil
}
