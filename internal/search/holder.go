package search

import "sync/atomic"

// Holder publishes the current Index to concurrent readers. Rebuilt indexes
// are swapped in whole.
type Holder[T any] struct {
	p atomic.Pointer[Index[T]]
}

// Store replaces the current index.
func (h *Holder[T]) Store(ix *Index[T]) {
	h.p.Store(ix)
}

// Load returns the current index, or nil before the first Store.
func (h *Holder[T]) Load() *Index[T] {
	return h.p.Load()
}

// Query runs text against the current index. The second value is the size
// of the searched set.
func (h *Holder[T]) Query(text string) ([]T, int) {
	ix := h.p.Load()
	if ix == nil {
		return nil, 0
	}
	return ix.Query(text), ix.Len()
}
