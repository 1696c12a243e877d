package highlight

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Job is one code block to pre-render.
type Job struct {
	Code     string
	Language string
}

// Prewarm highlights every job in every theme so later lookups are cache
// hits. It returns how many results fell back to plain text.
func Prewarm(ctx context.Context, h *Highlighter, jobs []Job, themes []ThemeID, concurrency int) (int, error) {
	if concurrency <= 0 {
		concurrency = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var plain atomic.Int64
	for _, theme := range themes {
		for _, job := range jobs {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				if r := h.Highlight(ctx, job.Code, job.Language, theme); r.Plain {
					plain.Add(1)
				}
				return nil
			})
		}
	}
	err := g.Wait()
	return int(plain.Load()), err
}
