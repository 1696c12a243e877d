package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// Index answers ranked queries over a fixed, ordered set of items.
type Index[T any] struct {
	items []T
	opts  Options
	// fields[k] holds every value of key k across all items, flattened, so
	// one subsequence pass per key covers the whole set.
	fields []keyValues
}

type keyValues struct {
	values []value
}

// value is one normalized field string of one item.
type value struct {
	doc   int
	text  string
	words []string
	norm  float64
}

// keyValues implements fuzzy.Source.
func (kv keyValues) String(i int) string { return kv.values[i].text }
func (kv keyValues) Len() int            { return len(kv.values) }

// Build projects every item to a Record and precomputes the normalized
// field data. The index never changes after Build; rebuild it when the item
// set changes.
func Build[T any](items []T, project func(T) Record, opts Options) *Index[T] {
	opts = opts.withDefaults()
	ix := &Index[T]{
		items:  items,
		opts:   opts,
		fields: make([]keyValues, len(opts.Keys)),
	}
	for i, item := range items {
		rec := project(item)
		for k, key := range opts.Keys {
			for _, raw := range rec.field(key.Name) {
				text := strings.ToLower(strings.TrimSpace(raw))
				if text == "" {
					continue
				}
				ix.fields[k].values = append(ix.fields[k].values, value{
					doc:   i,
					text:  text,
					words: uniqueWords(text),
					norm:  fieldNorm(raw),
				})
			}
		}
	}
	return ix
}

// Len returns the number of indexed items.
func (ix *Index[T]) Len() int {
	return len(ix.items)
}

// Query returns at most Limit items, best match first. A blank query returns
// the first Limit items in their original order.
func (ix *Index[T]) Query(text string) []T {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return ix.head()
	}
	terms := strings.Fields(q)

	type hit struct {
		doc     int
		score   float64
		matched bool
	}
	hits := make([]hit, len(ix.items))
	for i := range hits {
		hits[i] = hit{doc: i, score: 1}
	}

	for k, key := range ix.opts.Keys {
		kv := ix.fields[k]
		density := make(map[int]float64)
		for _, m := range fuzzy.FindFrom(q, kv) {
			density[m.Index] = densityScore(m.MatchedIndexes)
		}

		for vi, v := range kv.values {
			d, ok := density[vi]
			if !ok {
				d = 1
			}
			s := scoreValue(v, q, terms, d, ix.opts.Threshold)
			if s > ix.opts.Threshold {
				continue
			}
			h := &hits[v.doc]
			h.matched = true
			if s == 0 {
				s = epsilon
			}
			h.score *= math.Pow(s, key.Weight*v.norm)
		}
	}

	var ranked []hit
	for _, h := range hits {
		if h.matched {
			ranked = append(ranked, h)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score < ranked[b].score
	})
	if len(ranked) > ix.opts.Limit {
		ranked = ranked[:ix.opts.Limit]
	}

	out := make([]T, len(ranked))
	for i, h := range ranked {
		out[i] = ix.items[h.doc]
	}
	return out
}

func (ix *Index[T]) head() []T {
	n := min(len(ix.items), ix.opts.Limit)
	out := make([]T, n)
	copy(out, ix.items[:n])
	return out
}

// fieldNorm dampens matches in long fields: 1/sqrt(token count), rounded to
// three decimals.
func fieldNorm(s string) float64 {
	n := len(strings.Fields(s))
	if n == 0 {
		n = 1
	}
	return math.Round(1000/math.Sqrt(float64(n))) / 1000
}

func uniqueWords(s string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}
