package highlight

import (
	"context"
	"sync"
)

// CodeView is the highlight state of one rendered code block. It shows the
// cached markup immediately when present, otherwise a plain placeholder that
// Start later replaces.
type CodeView struct {
	h     *Highlighter
	code  string
	lang  string
	theme ThemeID

	mu      sync.RWMutex
	current Result
	ready   bool

	// applyMu orders late results against Dispose.
	applyMu  sync.Mutex
	disposed bool
	cancel   context.CancelFunc
}

// NewCodeView creates a view for one code block.
func NewCodeView(h *Highlighter, code, lang string, theme ThemeID) *CodeView {
	v := &CodeView{h: h, code: code, lang: lang, theme: theme}
	if r, ok := h.Lookup(code, lang, theme); ok {
		v.current, v.ready = r, true
	} else {
		v.current = Result{Plain: true}
	}
	return v
}

// Current returns what the block should display right now.
func (v *CodeView) Current() Result {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Ready reports whether Current holds a final result.
func (v *CodeView) Ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ready
}

// Code returns the raw block text shown while the view is plain.
func (v *CodeView) Code() string {
	return v.code
}

// Start resolves the view in the background and calls onReady with the
// result, unless the view was disposed first. onReady must not call Dispose.
// Start is a no-op for views that are ready, disposed or already starting.
// A run abandoned through ctx leaves the view plain and startable again.
func (v *CodeView) Start(ctx context.Context, onReady func(Result)) {
	if v.Ready() {
		return
	}

	v.applyMu.Lock()
	if v.disposed || v.cancel != nil {
		v.applyMu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.applyMu.Unlock()

	go func() {
		defer cancel()
		r := v.h.Highlight(ctx, v.code, v.lang, v.theme)

		v.applyMu.Lock()
		defer v.applyMu.Unlock()
		if v.disposed {
			return
		}
		if ctx.Err() != nil {
			// The caller gave up; a later Start may try again.
			v.cancel = nil
			return
		}
		v.mu.Lock()
		v.current, v.ready = r, true
		v.mu.Unlock()
		if onReady != nil {
			onReady(r)
		}
	}()
}

// Dispose detaches the view. After it returns no pending result is applied
// and onReady is not called.
func (v *CodeView) Dispose() {
	v.applyMu.Lock()
	defer v.applyMu.Unlock()
	v.disposed = true
	if v.cancel != nil {
		v.cancel()
	}
}
