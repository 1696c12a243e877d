package content

// FallbackColor is used for languages without an accent.
const FallbackColor = "#d4d4d4"

var languageColors = map[string]string{
	"markdown":   "var(--accent-green)",
	"typescript": "var(--accent-blue)",
	"javascript": "var(--accent-yellow)",
	"go":         "var(--accent-cyan)",
	"bash":       "var(--accent-orange)",
	"zsh":        "var(--accent-green)",
	"json":       "var(--accent-yellow)",
	"powershell": "var(--accent-blue)",
	"rust":       "var(--accent-orange)",
	"python":     "#3572A5",
}

// LanguageColor returns the file icon color for an article language. Most
// values are theme accent variables; unknown languages get FallbackColor.
func LanguageColor(lang string) string {
	if c, ok := languageColors[lang]; ok {
		return c
	}
	return FallbackColor
}
