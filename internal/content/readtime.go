package content

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const wordsPerMinute = 200

var wordCounter = goldmark.New()

// CountWords counts the words a reader sees in a markdown body: prose text
// and code lines, without markup.
func CountWords(body []byte) int {
	doc := wordCounter.Parser().Parse(text.NewReader(body))
	words := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			words += len(strings.Fields(string(node.Segment.Value(body))))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				words += len(strings.Fields(string(seg.Value(body))))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return words
}

// EstimateReadTime renders the reading time of body as "N min", at least 1.
func EstimateReadTime(body string) string {
	words := CountWords([]byte(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min", minutes)
}
