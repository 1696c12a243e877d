package search

// Status tells a result list which state to draw.
type Status string

// Result list states. NoMatches and NoArticles are deliberately distinct.
const (
	StatusResults    Status = "results"
	StatusNoMatches  Status = "no_matches"
	StatusNoArticles Status = "no_articles"
)

// Outcome classifies a query result given the size of the searched set.
func Outcome(total, results int) Status {
	switch {
	case total == 0:
		return StatusNoArticles
	case results == 0:
		return StatusNoMatches
	default:
		return StatusResults
	}
}

// Picker tracks the highlighted row of a result list. Keyboard navigation
// and direct selection go through the same index, so both pick the same
// item.
type Picker[T any] struct {
	items  []T
	cursor int
}

// SetResults replaces the list and moves the cursor back to the top.
func (p *Picker[T]) SetResults(items []T) {
	p.items = items
	p.cursor = 0
}

// Items returns the current list.
func (p *Picker[T]) Items() []T {
	return p.items
}

// Cursor returns the highlighted row.
func (p *Picker[T]) Cursor() int {
	return p.cursor
}

// Next moves the cursor down, stopping at the last row.
func (p *Picker[T]) Next() {
	if p.cursor < len(p.items)-1 {
		p.cursor++
	}
}

// Prev moves the cursor up, stopping at the first row.
func (p *Picker[T]) Prev() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// Selected returns the highlighted item.
func (p *Picker[T]) Selected() (T, bool) {
	return p.at(p.cursor)
}

// Select picks row i directly, as a click would.
func (p *Picker[T]) Select(i int) (T, bool) {
	item, ok := p.at(i)
	if ok {
		p.cursor = i
	}
	return item, ok
}

// Confirm picks the highlighted row, as Enter would.
func (p *Picker[T]) Confirm() (T, bool) {
	return p.Select(p.cursor)
}

func (p *Picker[T]) at(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(p.items) {
		return zero, false
	}
	return p.items[i], true
}
