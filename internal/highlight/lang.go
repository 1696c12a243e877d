// Package highlight turns fenced code into themed HTML markup.
//
// Tokenization is delegated to an external engine that is loaded once per
// process. Results are memoized in an explicitly owned, append-only Cache
// keyed by theme, normalized language and exact source text, so identical
// requests never reach the tokenizer twice.
package highlight

import "strings"

// PlainText is the grammar used when a language is unknown or absent.
const PlainText = "text"

var languageAliases = map[string]string{
	"":          PlainText,
	"txt":       PlainText,
	"plaintext": PlainText,
	"sh":        "shellscript",
	"shell":     "shellscript",
	"zsh":       "shellscript",
	"js":        "javascript",
	"mjs":       "javascript",
	"cjs":       "javascript",
	"ts":        "typescript",
	"yml":       "yaml",
	"md":        "markdown",
	"py":        "python",
	"rs":        "rust",
	"cs":        "csharp",
	"c#":        "csharp",
}

// Grammars is the set of grammar names the engine is loaded with.
var Grammars = []string{
	"text", "bash", "shellscript", "json", "yaml", "toml", "ini", "markdown",
	"html", "css", "javascript", "typescript", "tsx", "jsx", "python", "go",
	"rust", "java", "c", "cpp", "csharp", "sql",
}

var supported = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Grammars))
	for _, g := range Grammars {
		m[g] = struct{}{}
	}
	return m
}()

// NormalizeLanguage maps a declared fence language to a supported grammar
// name. It is total: anything it does not recognise becomes PlainText.
func NormalizeLanguage(declared string) string {
	lang := strings.ToLower(strings.TrimSpace(declared))
	if alias, ok := languageAliases[lang]; ok {
		lang = alias
	}
	if _, ok := supported[lang]; !ok {
		return PlainText
	}
	return lang
}
