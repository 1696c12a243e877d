package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/rixa/internal/content"
)

// Styles holds every lipgloss style the browser draws with.
type Styles struct {
	Title    lipgloss.Style
	H1       lipgloss.Style
	H2       lipgloss.Style
	H3       lipgloss.Style
	Text     lipgloss.Style
	Bold     lipgloss.Style
	Code     lipgloss.Style
	Link     lipgloss.Style
	Italic   lipgloss.Style
	Rule     lipgloss.Style
	Bullet   lipgloss.Style
	Done     lipgloss.Style
	Table    lipgloss.Style
	CodeBox  lipgloss.Style
	Selected lipgloss.Style
	Dim      lipgloss.Style
	Error    lipgloss.Style
	Border   lipgloss.Style
}

// DefaultStyles returns the dark palette.
func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		H1:       lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("15")),
		H2:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		H3:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Text:     lipgloss.NewStyle(),
		Bold:     lipgloss.NewStyle().Bold(true),
		Code:     lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Background(lipgloss.Color("236")),
		Link:     lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39")),
		Italic:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Rule:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Bullet:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Done:     lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241")),
		Table:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		CodeBox:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color("236")).Bold(true),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
	}
}

// accentColors maps the theme accent variables used by content.LanguageColor
// to terminal colors.
var accentColors = map[string]string{
	"var(--accent-green)":  "2",
	"var(--accent-blue)":   "4",
	"var(--accent-yellow)": "3",
	"var(--accent-cyan)":   "6",
	"var(--accent-orange)": "208",
}

// languageColor returns the terminal color of an article language icon.
func languageColor(lang string) lipgloss.Color {
	c := content.LanguageColor(lang)
	if ansi, ok := accentColors[c]; ok {
		return lipgloss.Color(ansi)
	}
	if strings.HasPrefix(c, "#") {
		return lipgloss.Color(c)
	}
	return lipgloss.Color(content.FallbackColor)
}
