package highlight

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Tokenizer renders code in a grammar and engine theme to markup.
type Tokenizer interface {
	Highlight(code, grammar, engineTheme string) (string, error)
}

// Loader builds a Tokenizer. It is invoked at most once per Engine.
type Loader func(ctx context.Context) (Tokenizer, error)

// pending is the shared handle for the one engine load. done is closed once
// tok and err are final.
type pending struct {
	done chan struct{}
	tok  Tokenizer
	err  error
}

// Engine lazily loads a Tokenizer exactly once and shares the in-flight load
// with every concurrent caller. A failed load is memoized as well.
type Engine struct {
	load   Loader
	logger *slog.Logger

	once sync.Once
	p    *pending
}

// NewEngine returns an Engine that will call load on first use.
func NewEngine(load Loader, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		load:   load,
		logger: logger,
		p:      &pending{done: make(chan struct{})},
	}
}

// Get returns the loaded Tokenizer, starting the load if nobody has yet.
// Cancelling ctx abandons the wait but never the shared load.
func (e *Engine) Get(ctx context.Context) (Tokenizer, error) {
	e.once.Do(func() { go e.run() })

	select {
	case <-e.p.done:
		return e.p.tok, e.p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loaded reports whether the load has finished, successfully or not.
func (e *Engine) Loaded() bool {
	select {
	case <-e.p.done:
		return true
	default:
		return false
	}
}

func (e *Engine) run() {
	defer close(e.p.done)

	start := time.Now()
	e.logger.Debug("highlight: engine loading")

	tok, err := e.load(context.Background())
	if err != nil {
		e.logger.Error("highlight: engine load failed", slog.String("error", err.Error()))
		e.p.err = err
		return
	}
	e.p.tok = tok
	e.logger.Info("highlight: engine ready", slog.Duration("took", time.Since(start)))
}
