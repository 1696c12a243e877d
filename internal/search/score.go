package search

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// epsilon stands in for a perfect field score so it still carries weight in
// the product.
const epsilon = 2.220446049250313e-16

// scoreValue rates how well query q matches one field value, from 0 (exact
// substring) to 1 (nothing in common). It takes the better of the
// subsequence density and the per-word typo distance.
func scoreValue(v value, q string, terms []string, density, threshold float64) float64 {
	if strings.Contains(v.text, q) {
		return 0
	}
	best := density
	if t := typoScore(v, terms, threshold); t < best {
		best = t
	}
	return best
}

// densityScore measures how spread out a subsequence match is: the share of
// the matched span that is not part of the pattern.
func densityScore(matched []int) float64 {
	if len(matched) == 0 {
		return 1
	}
	span := matched[len(matched)-1] - matched[0] + 1
	if span <= 0 {
		return 1
	}
	gaps := span - len(matched)
	if gaps < 0 {
		gaps = 0
	}
	return float64(gaps) / float64(span)
}

// typoScore averages, over the query terms, the best edit ratio between a
// term and any word of the value (or that word's prefix of the same length).
func typoScore(v value, terms []string, threshold float64) float64 {
	if len(terms) == 0 {
		return 1
	}
	var sum float64
	for _, term := range terms {
		if strings.Contains(v.text, term) {
			continue
		}
		sum += bestWordRatio(term, v.words, threshold)
	}
	return sum / float64(len(terms))
}

func bestWordRatio(term string, words []string, threshold float64) float64 {
	tl := utf8.RuneCountInString(term)
	maxEdits := int(threshold * float64(tl))
	best := 1.0
	for _, w := range words {
		if utf8.RuneCountInString(w)+maxEdits < tl {
			continue
		}
		if r := wordRatio(term, w, tl); r < best {
			best = r
			if best == 0 {
				break
			}
		}
	}
	return best
}

func wordRatio(term, word string, termLen int) float64 {
	d := levenshtein.ComputeDistance(term, word)
	if wr := []rune(word); len(wr) > termLen {
		if p := levenshtein.ComputeDistance(term, string(wr[:termLen])); p < d {
			d = p
		}
	}
	r := float64(d) / float64(termLen)
	if r > 1 {
		return 1
	}
	return r
}
