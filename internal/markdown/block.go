// Package markdown converts article bodies into render-ready block descriptors.
//
// The parser is line oriented: every source line is classified by an ordered
// cascade of rules and mapped to exactly one block, or absorbed into a list,
// table or code grouping. It never fails; unrecognised input degrades to
// paragraphs.
package markdown

import "strings"

// Kind identifies the variant carried by a Block.
type Kind string

// Block kinds.
const (
	KindHeader        Kind = "header"
	KindParagraph     Kind = "paragraph"
	KindUnorderedList Kind = "unordered_list"
	KindOrderedList   Kind = "ordered_list"
	KindCheckbox      Kind = "checkbox"
	KindTableRow      Kind = "table_row"
	KindRule          Kind = "rule"
	KindCode          Kind = "code"
	KindBlank         Kind = "blank"
	KindItalic        Kind = "italic"
)

// Block is one structural unit of a parsed article. Only the fields relevant
// to Kind are populated.
type Block struct {
	Kind Kind `json:"kind"`

	// Header level (1-3).
	Level int `json:"level,omitempty"`
	// Header, italic line and raw checkbox label text.
	Text string `json:"text,omitempty"`
	// Paragraph and checkbox label spans.
	Spans []Span `json:"spans,omitempty"`
	// Checkbox state.
	Checked bool `json:"checked,omitempty"`
	// Table row cells, trimmed, in source order.
	Cells []string `json:"cells,omitempty"`
	// Code block declared language ("text" when none) and raw lines.
	Language string   `json:"language,omitempty"`
	Lines    []string `json:"lines,omitempty"`
	// List items for unordered and ordered list blocks.
	Items []ListItem `json:"items,omitempty"`
}

// ListItem is one line of a contiguous list run.
type ListItem struct {
	// Label is the original numeric label of an ordered item ("3" for "3. foo").
	Label    string `json:"label,omitempty"`
	Text     string `json:"text"`
	Indented bool   `json:"indented,omitempty"`
	Spans    []Span `json:"spans"`
}

// Code returns the code block body joined with newlines.
func (b Block) Code() string {
	return strings.Join(b.Lines, "\n")
}

// PlainText returns the block's readable text with inline markers removed.
func (b Block) PlainText() string {
	switch b.Kind {
	case KindHeader, KindItalic:
		return b.Text
	case KindParagraph, KindCheckbox:
		return spansText(b.Spans)
	case KindUnorderedList, KindOrderedList:
		parts := make([]string, 0, len(b.Items))
		for _, it := range b.Items {
			parts = append(parts, spansText(it.Spans))
		}
		return strings.Join(parts, "\n")
	case KindTableRow:
		return strings.Join(b.Cells, " ")
	case KindCode:
		return b.Code()
	default:
		return ""
	}
}

func spansText(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
