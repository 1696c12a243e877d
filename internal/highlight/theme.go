package highlight

// ThemeID is one of the application's selectable visual themes.
type ThemeID string

// Application themes.
const (
	ThemeDefault    ThemeID = "default"
	ThemeDracula    ThemeID = "dracula"
	ThemeOneDarkPro ThemeID = "one-dark-pro"
	ThemeAuraDark   ThemeID = "aura-dark"
)

// DefaultTheme is used whenever a theme key is not recognised.
const DefaultTheme = ThemeDefault

var engineThemes = map[ThemeID]string{
	ThemeDefault:    "github-dark",
	ThemeDracula:    "dracula",
	ThemeOneDarkPro: "onedark",
	ThemeAuraDark:   "witchhazel",
}

// Themes returns every application theme in display order.
func Themes() []ThemeID {
	return []ThemeID{ThemeDefault, ThemeDracula, ThemeOneDarkPro, ThemeAuraDark}
}

// ParseTheme resolves a theme key, falling back to DefaultTheme.
func ParseTheme(s string) ThemeID {
	id := ThemeID(s)
	if _, ok := engineThemes[id]; ok {
		return id
	}
	return DefaultTheme
}

// EngineTheme returns the tokenizer style name for an application theme.
func EngineTheme(id ThemeID) string {
	if name, ok := engineThemes[id]; ok {
		return name
	}
	return engineThemes[DefaultTheme]
}
