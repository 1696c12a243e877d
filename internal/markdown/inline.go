package markdown

import "strings"

// SpanKind identifies an inline span variant.
type SpanKind string

// Inline span kinds.
const (
	SpanText SpanKind = "text"
	SpanCode SpanKind = "code"
	SpanBold SpanKind = "bold"
	SpanLink SpanKind = "link"
)

// Span is one styled fragment of prose. URL is set for links only; Text holds
// the link label for links.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
	URL  string   `json:"url,omitempty"`
}

// ParseInline splits text into plain, inline-code, bold and link spans with a
// single left-to-right scan. At each position it tries, in order, a backtick
// pair, a double-asterisk pair and a [label](url) link; otherwise it emits
// text up to the next candidate opener. Every iteration consumes at least one
// byte and all delimiter lookups are table driven, so the scan is linear even
// for inputs full of unmatched openers.
func ParseInline(text string) []Span {
	if text == "" {
		return nil
	}
	sc := newInlineScanner(text)

	var spans []Span
	// Plain runs are contiguous slices of text; they are accumulated as a
	// range and flushed before the next styled span.
	plainStart, plainEnd := -1, -1
	plain := func(from, to int) {
		if plainStart < 0 {
			plainStart = from
		}
		plainEnd = to
	}
	flush := func() {
		if plainStart >= 0 && plainEnd > plainStart {
			spans = append(spans, Span{Kind: SpanText, Text: text[plainStart:plainEnd]})
		}
		plainStart, plainEnd = -1, -1
	}

	i := 0
	for i < len(text) {
		if span, next, ok := sc.match(i); ok {
			flush()
			spans = append(spans, span)
			i = next
			continue
		}

		next := sc.nextOpener(i)
		if next < 0 {
			plain(i, len(text))
			break
		}
		if next > i {
			plain(i, next)
			i = next
			continue
		}
		// An opener at i that did not close: emit it verbatim.
		plain(i, i+1)
		i++
	}
	flush()
	return spans
}

// inlineScanner holds next-occurrence tables for every delimiter so lookups
// are O(1). next*[k] is the smallest index >= k holding the marker, or -1.
type inlineScanner struct {
	text       string
	nextTick   []int
	nextBold   []int
	nextOpen   []int
	nextClose  []int
	parenMatch map[int]int
}

func newInlineScanner(text string) *inlineScanner {
	n := len(text)
	sc := &inlineScanner{
		text:      text,
		nextTick:  make([]int, n+1),
		nextBold:  make([]int, n+1),
		nextOpen:  make([]int, n+1),
		nextClose: make([]int, n+1),
	}
	sc.nextTick[n], sc.nextBold[n], sc.nextOpen[n], sc.nextClose[n] = -1, -1, -1, -1
	for k := n - 1; k >= 0; k-- {
		sc.nextTick[k], sc.nextBold[k] = sc.nextTick[k+1], sc.nextBold[k+1]
		sc.nextOpen[k], sc.nextClose[k] = sc.nextOpen[k+1], sc.nextClose[k+1]
		switch text[k] {
		case '`':
			sc.nextTick[k] = k
		case '*':
			if k+1 < n && text[k+1] == '*' {
				sc.nextBold[k] = k
			}
		case '[':
			sc.nextOpen[k] = k
		case ']':
			sc.nextClose[k] = k
		}
	}
	return sc
}

func (sc *inlineScanner) at(table []int, k int) int {
	if k >= len(table) {
		return -1
	}
	return table[k]
}

// match tries the three delimited forms at position i and returns the span
// plus the index just past it.
func (sc *inlineScanner) match(i int) (Span, int, bool) {
	text := sc.text

	if text[i] == '`' {
		if end := sc.at(sc.nextTick, i+1); end >= 0 {
			return Span{Kind: SpanCode, Text: text[i+1 : end]}, end + 1, true
		}
	}

	if sc.nextBold[i] == i {
		if end := sc.at(sc.nextBold, i+2); end >= 0 {
			return Span{Kind: SpanBold, Text: text[i+2 : end]}, end + 2, true
		}
	}

	if text[i] == '[' {
		return sc.matchLink(i)
	}
	return Span{}, 0, false
}

// matchLink parses [label](url) starting at i. The closing parenthesis is the
// one that balances the opening parenthesis, so URLs may contain nested pairs.
func (sc *inlineScanner) matchLink(i int) (Span, int, bool) {
	text := sc.text
	closeBracket := sc.at(sc.nextClose, i+1)
	if closeBracket < 0 {
		return Span{}, 0, false
	}
	openParen := closeBracket + 1
	if openParen >= len(text) || text[openParen] != '(' {
		return Span{}, 0, false
	}
	closeParen, ok := sc.matchingParen(openParen)
	if !ok {
		return Span{}, 0, false
	}
	return Span{
		Kind: SpanLink,
		Text: text[i+1 : closeBracket],
		URL:  strings.TrimSpace(text[openParen+1 : closeParen]),
	}, closeParen + 1, true
}

// matchingParen returns the index of the ')' balancing the '(' at open. All
// pairs are resolved in one stack pass on first use.
func (sc *inlineScanner) matchingParen(open int) (int, bool) {
	if sc.parenMatch == nil {
		sc.parenMatch = make(map[int]int)
		var stack []int
		for k := 0; k < len(sc.text); k++ {
			switch sc.text[k] {
			case '(':
				stack = append(stack, k)
			case ')':
				if len(stack) > 0 {
					sc.parenMatch[stack[len(stack)-1]] = k
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	closeParen, ok := sc.parenMatch[open]
	return closeParen, ok
}

// nextOpener returns the nearest index >= from where any opener occurs, or -1.
func (sc *inlineScanner) nextOpener(from int) int {
	next := -1
	for _, idx := range []int{sc.nextTick[from], sc.nextBold[from], sc.nextOpen[from]} {
		if idx >= 0 && (next < 0 || idx < next) {
			next = idx
		}
	}
	return next
}
