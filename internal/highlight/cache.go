package highlight

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Entry is a memoized highlight outcome. Failed entries render as plain code.
type Entry struct {
	HTML   string
	Failed bool
}

// Key builds the cache key for a theme, a normalized language and exact code.
func Key(theme ThemeID, lang, code string) string {
	return string(theme) + ":" + lang + "\n" + code
}

// Result is what a block shows for the entry.
func (e Entry) Result() Result {
	if e.Failed {
		return Result{Plain: true}
	}
	return Result{HTML: e.HTML}
}

// SplitKey reverses Key.
func SplitKey(key string) (theme ThemeID, lang, code string, ok bool) {
	head, code, ok := strings.Cut(key, "\n")
	if !ok {
		return "", "", "", false
	}
	t, lang, ok := strings.Cut(head, ":")
	if !ok {
		return "", "", "", false
	}
	return ThemeID(t), lang, code, true
}

// Cache is an append-only store that lives as long as its owner. Values are
// stored whole, so readers never see a partial entry. There is no eviction;
// the corpus it serves is small and fixed.
type Cache struct {
	m sync.Map
	n atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Lookup returns the entry stored under key.
func (c *Cache) Lookup(key string) (Entry, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Store records e under key unless a value is already present, and returns
// whichever value the cache now holds.
func (c *Cache) Store(key string, e Entry) Entry {
	v, loaded := c.m.LoadOrStore(key, e)
	if !loaded {
		c.n.Add(1)
	}
	return v.(Entry)
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	return int(c.n.Load())
}

// Range calls fn for every entry until fn returns false.
func (c *Cache) Range(fn func(key string, e Entry) bool) {
	c.m.Range(func(k, v any) bool {
		return fn(k.(string), v.(Entry))
	})
}
