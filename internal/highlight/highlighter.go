package highlight

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"golang.org/x/sync/singleflight"
)

// Result is what a code block renders. HTML carries the tokenizer's markup,
// which is ANSI text for a TerminalLoader engine. When Plain is set the
// caller shows the raw code verbatim and HTML is empty.
type Result struct {
	HTML  string `json:"html,omitempty"`
	Plain bool   `json:"plain"`
}

var backgroundRe = regexp.MustCompile(`background-color:\s*#[0-9a-fA-F]{3,8};?`)

const transparentBackground = "background-color:transparent;"

// errEngine marks a flight that could not reach a tokenizer. Such outcomes
// are not cached; the Engine memoizes its own failure.
var errEngine = errors.New("highlight: engine unavailable")

// Highlighter serves highlight requests cache-first and collapses concurrent
// requests for the same key into one tokenization.
type Highlighter struct {
	engine *Engine
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// New returns a Highlighter backed by engine and cache.
func New(engine *Engine, cache *Cache, logger *slog.Logger) *Highlighter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Highlighter{engine: engine, cache: cache, logger: logger}
}

// Cache returns the cache the highlighter writes to.
func (h *Highlighter) Cache() *Cache {
	return h.cache
}

// Lookup returns the memoized result for the request without suspending.
func (h *Highlighter) Lookup(code, lang string, theme ThemeID) (Result, bool) {
	e, ok := h.cache.Lookup(Key(ParseTheme(string(theme)), NormalizeLanguage(lang), code))
	if !ok {
		return Result{}, false
	}
	return e.Result(), true
}

// Highlight returns highlighted markup for code, or a plain result when the
// language is unsupported, the engine is unavailable, tokenization fails or
// ctx ends first. Unknown themes share the default theme's entries. It never
// returns an error.
func (h *Highlighter) Highlight(ctx context.Context, code, lang string, theme ThemeID) Result {
	theme = ParseTheme(string(theme))
	grammar := NormalizeLanguage(lang)
	key := Key(theme, grammar, code)
	if e, ok := h.cache.Lookup(key); ok {
		return e.Result()
	}

	// The flight outlives any single caller; waiters drop out on their own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := h.group.DoChan(key, func() (any, error) {
		if e, ok := h.cache.Lookup(key); ok {
			return e, nil
		}
		tok, err := h.engine.Get(flightCtx)
		if err != nil {
			return nil, errEngine
		}
		markup, err := tok.Highlight(code, grammar, EngineTheme(theme))
		if err != nil {
			h.logger.Debug("highlight: tokenize failed",
				slog.String("language", grammar),
				slog.String("theme", string(theme)),
				slog.String("error", err.Error()))
			return h.cache.Store(key, Entry{Failed: true}), nil
		}
		return h.cache.Store(key, Entry{HTML: stripBackground(markup)}), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Result{Plain: true}
		}
		return res.Val.(Entry).Result()
	case <-ctx.Done():
		return Result{Plain: true}
	}
}

// stripBackground neutralizes engine background colors so the surrounding
// container decides the background.
func stripBackground(markup string) string {
	return backgroundRe.ReplaceAllString(markup, transparentBackground)
}
