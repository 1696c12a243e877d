package markdown

import (
	"regexp"
	"strings"
)

const fenceToken = "```"

var (
	checkboxRe  = regexp.MustCompile(`^\s*- \[([ xX])\]\s+(.*)$`)
	unorderedRe = regexp.MustCompile(`^(\s*)[-*]\s+(.*)$`)
	orderedRe   = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.*)$`)
	separatorRe = regexp.MustCompile(`^[-:]+$`)
)

// fenceState tracks an open code fence between lines.
type fenceState struct {
	open bool
	lang string
	buf  []string
}

// state is threaded through a single forward pass over the source lines.
type state struct {
	lines  []string
	pos    int
	fence  fenceState
	blocks []Block
}

func (st *state) emit(b Block) {
	st.blocks = append(st.blocks, b)
}

func (st *state) flushFence() {
	lang := st.fence.lang
	if lang == "" {
		lang = "text"
	}
	lines := st.fence.buf
	if lines == nil {
		lines = []string{}
	}
	st.emit(Block{Kind: KindCode, Language: lang, Lines: lines})
	st.fence = fenceState{}
}

// rule classifies the current line. It returns true when it handled the line
// (possibly consuming following lines by advancing st.pos).
type rule func(st *state, line string) bool

// cascade is evaluated top to bottom; the first rule that handles a line wins.
var cascade = []rule{
	fenceRule,
	headerRule,
	horizontalRule,
	tableRule,
	checkboxRule,
	unorderedRule,
	orderedRule,
	italicRule,
	blankRule,
	paragraphRule,
}

// Parse converts markdown source into an ordered sequence of blocks. It is a
// pure function of its input: block order follows source line order and a
// fence left open at end of input is flushed as a final code block.
func Parse(source string) []Block {
	st := &state{lines: splitLines(source)}
	for st.pos < len(st.lines) {
		line := st.lines[st.pos]
		for _, r := range cascade {
			if r(st, line) {
				break
			}
		}
		st.pos++
	}
	if st.fence.open {
		st.flushFence()
	}
	return st.blocks
}

func splitLines(source string) []string {
	lines := strings.Split(source, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// fenceRule toggles fence state on delimiter lines and captures every line
// verbatim while a fence is open.
func fenceRule(st *state, line string) bool {
	if strings.HasPrefix(line, fenceToken) {
		if st.fence.open {
			st.flushFence()
		} else {
			st.fence = fenceState{open: true, lang: strings.TrimSpace(line[len(fenceToken):])}
		}
		return true
	}
	if st.fence.open {
		st.fence.buf = append(st.fence.buf, line)
		return true
	}
	return false
}

func headerRule(st *state, line string) bool {
	for level := 3; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(line, prefix) {
			st.emit(Block{Kind: KindHeader, Level: level, Text: line[len(prefix):]})
			return true
		}
	}
	return false
}

func horizontalRule(st *state, line string) bool {
	if strings.TrimSpace(line) != "---" {
		return false
	}
	st.emit(Block{Kind: KindRule})
	return true
}

// tableRule emits one row per pipe line. Separator rows (every cell made of
// '-' and ':') are consumed without output.
func tableRule(st *state, line string) bool {
	if !strings.HasPrefix(line, "|") {
		return false
	}
	cells := splitCells(line)
	if isSeparatorRow(cells) {
		return true
	}
	st.emit(Block{Kind: KindTableRow, Cells: cells})
	return true
}

func splitCells(line string) []string {
	raw := strings.Split(line, "|")
	if len(raw) > 0 && strings.TrimSpace(raw[0]) == "" {
		raw = raw[1:]
	}
	if n := len(raw); n > 0 && strings.TrimSpace(raw[n-1]) == "" {
		raw = raw[:n-1]
	}
	cells := make([]string, len(raw))
	for i, c := range raw {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if !separatorRe.MatchString(c) {
			return false
		}
	}
	return true
}

func checkboxRule(st *state, line string) bool {
	m := checkboxRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	st.emit(Block{
		Kind:    KindCheckbox,
		Checked: m[1] != " ",
		Text:    m[2],
		Spans:   ParseInline(m[2]),
	})
	return true
}

// unorderedRule groups the current line and every following line that is
// also a bullet into one list block.
func unorderedRule(st *state, line string) bool {
	if !unorderedRe.MatchString(line) {
		return false
	}
	block := Block{Kind: KindUnorderedList}
	for ; st.pos < len(st.lines); st.pos++ {
		m := unorderedRe.FindStringSubmatch(st.lines[st.pos])
		if m == nil {
			break
		}
		block.Items = append(block.Items, listItem("", m[1], m[2]))
	}
	st.pos--
	st.emit(block)
	return true
}

// orderedRule groups contiguous numbered lines, keeping each original label.
func orderedRule(st *state, line string) bool {
	if !orderedRe.MatchString(line) {
		return false
	}
	block := Block{Kind: KindOrderedList}
	for ; st.pos < len(st.lines); st.pos++ {
		m := orderedRe.FindStringSubmatch(st.lines[st.pos])
		if m == nil {
			break
		}
		block.Items = append(block.Items, listItem(m[2], m[1], m[3]))
	}
	st.pos--
	st.emit(block)
	return true
}

func listItem(label, indent, text string) ListItem {
	return ListItem{
		Label:    label,
		Text:     text,
		Indented: indent != "",
		Spans:    ParseInline(text),
	}
}

// italicRule matches a whole line wrapped in single asterisks. The content is
// kept verbatim; inline spans are not parsed for note lines.
func italicRule(st *state, line string) bool {
	if len(line) <= 2 ||
		!strings.HasPrefix(line, "*") || !strings.HasSuffix(line, "*") ||
		strings.HasPrefix(line, "**") || strings.HasSuffix(line, "**") {
		return false
	}
	st.emit(Block{Kind: KindItalic, Text: line[1 : len(line)-1]})
	return true
}

func blankRule(st *state, line string) bool {
	if strings.TrimSpace(line) != "" {
		return false
	}
	st.emit(Block{Kind: KindBlank})
	return true
}

func paragraphRule(st *state, line string) bool {
	st.emit(Block{Kind: KindParagraph, Spans: ParseInline(line)})
	return true
}
