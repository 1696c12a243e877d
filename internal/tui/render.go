package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/markdown"
)

// trailingNewline matches the newline the lexer appends, before any closing
// escape codes.
var trailingNewline = regexp.MustCompile(`\n((?:\x1b\[[0-9;]*m)*)$`)

// Render draws parsed blocks as terminal text wrapped to width. views is
// indexed like blocks; a code block with a ready view shows its markup.
func Render(blocks []markdown.Block, views []*highlight.CodeView, width int, st *Styles) string {
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	var out []string
	for i, b := range blocks {
		switch b.Kind {
		case markdown.KindHeader:
			out = append(out, wrap.Render(headerStyle(b.Level, st).Render(b.Text)))
		case markdown.KindParagraph:
			out = append(out, wrap.Render(renderSpans(b.Spans, st)))
		case markdown.KindUnorderedList, markdown.KindOrderedList:
			for _, item := range b.Items {
				out = append(out, renderItem(b.Kind, item, width, st))
			}
		case markdown.KindCheckbox:
			box, label := "[ ]", renderSpans(b.Spans, st)
			if b.Checked {
				box, label = "[x]", st.Done.Render(b.Text)
			}
			out = append(out, wrap.Render(st.Bullet.Render(box)+" "+label))
		case markdown.KindTableRow:
			out = append(out, st.Table.Render(strings.Join(b.Cells, " │ ")))
		case markdown.KindRule:
			out = append(out, st.Rule.Render(strings.Repeat("─", width)))
		case markdown.KindCode:
			var v *highlight.CodeView
			if i < len(views) {
				v = views[i]
			}
			out = append(out, renderCode(b, v, width, st))
		case markdown.KindItalic:
			out = append(out, wrap.Render(st.Italic.Render(b.Text)))
		case markdown.KindBlank:
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

func headerStyle(level int, st *Styles) lipgloss.Style {
	switch level {
	case 1:
		return st.H1
	case 2:
		return st.H2
	default:
		return st.H3
	}
}

func renderItem(kind markdown.Kind, item markdown.ListItem, width int, st *Styles) string {
	marker := "•"
	if kind == markdown.KindOrderedList {
		marker = item.Label + "."
	}
	indent := ""
	if item.Indented {
		indent = "  "
	}
	prefix := indent + st.Bullet.Render(marker) + " "
	body := lipgloss.NewStyle().Width(width - lipgloss.Width(prefix)).Render(renderSpans(item.Spans, st))
	return lipgloss.JoinHorizontal(lipgloss.Top, prefix, body)
}

func renderSpans(spans []markdown.Span, st *Styles) string {
	var sb strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case markdown.SpanBold:
			sb.WriteString(st.Bold.Render(s.Text))
		case markdown.SpanCode:
			sb.WriteString(st.Code.Render(s.Text))
		case markdown.SpanLink:
			sb.WriteString(st.Link.Render(s.Text))
			sb.WriteString(st.Dim.Render(" (" + s.URL + ")"))
		default:
			sb.WriteString(st.Text.Render(s.Text))
		}
	}
	return sb.String()
}

// renderCode boxes the code, raw until v holds markup. The language label
// takes the language's accent color.
func renderCode(b markdown.Block, v *highlight.CodeView, width int, st *Styles) string {
	label := lipgloss.NewStyle().Foreground(languageColor(b.Language)).Render(b.Language)
	body := b.Code()
	if v != nil {
		if r := v.Current(); !r.Plain && r.HTML != "" {
			body = trailingNewline.ReplaceAllString(r.HTML, "$1")
		}
	}
	if body == "" {
		body = " "
	}
	box := st.CodeBox.Width(width - 2).Render(body)
	return label + "\n" + box
}
