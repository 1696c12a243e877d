// Package export writes the static bundle a client-side shell ships: article
// summaries, the folder tree, parsed blocks per article and pre-rendered
// highlight markup per theme.
//
// Layout under the output directory:
//
//	manifest.json
//	articles.json
//	tree.json
//	blocks/<id>.json
//	highlight/<theme>.json
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/starford/rixa/internal/content"
	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/library"
	"github.com/starford/rixa/internal/markdown"
	"github.com/starford/rixa/internal/models"
)

// Options controls a build.
type Options struct {
	OutDir      string
	Themes      []highlight.ThemeID
	Concurrency int
}

// Manifest summarises a finished build.
type Manifest struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Articles    int                 `json:"articles"`
	CodeBlocks  int                 `json:"codeBlocks"`
	Plain       int                 `json:"plain"`
	Themes      []highlight.ThemeID `json:"themes"`
}

// Block is a parsed block as written to blocks/<id>.json. Code blocks carry
// the key of their entry in highlight/<theme>.json.
type Block struct {
	markdown.Block
	HighlightKey string `json:"highlightKey,omitempty"`
}

// HighlightKey identifies a code block independent of theme: a short digest
// of its normalized language and source text.
func HighlightKey(lang, code string) string {
	return content.Checksum([]byte(highlight.NormalizeLanguage(lang) + "\n" + code))[:16]
}

// Build pre-warms the highlight cache for every code block in every theme
// and writes the bundle. The library must already be loaded.
func Build(ctx context.Context, svc *library.Service, opts Options, logger *slog.Logger) (Manifest, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Themes) == 0 {
		opts.Themes = highlight.Themes()
	}

	articles := svc.All()
	jobs := svc.CodeJobs()

	start := time.Now()
	plain, err := highlight.Prewarm(ctx, svc.Highlighter(), jobs, opts.Themes, opts.Concurrency)
	if err != nil {
		return Manifest{}, fmt.Errorf("export: prewarm: %w", err)
	}
	logger.Info("export: highlight cache warmed",
		slog.Int("blocks", len(jobs)),
		slog.Int("themes", len(opts.Themes)),
		slog.Int("plain", plain),
		slog.String("took", time.Since(start).String()),
	)

	summaries := make([]models.Article, len(articles))
	for i, a := range articles {
		summaries[i] = a.Summary()
	}
	if err := writeJSONFile(filepath.Join(opts.OutDir, "articles.json"), summaries); err != nil {
		return Manifest{}, err
	}
	if err := writeJSONFile(filepath.Join(opts.OutDir, "tree.json"), svc.Tree()); err != nil {
		return Manifest{}, err
	}

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return Manifest{}, err
		}
		blocks, err := svc.Blocks(ctx, a.ID)
		if err != nil {
			return Manifest{}, fmt.Errorf("export: blocks %s: %w", a.Path, err)
		}
		out := make([]Block, len(blocks))
		for i, b := range blocks {
			out[i] = Block{Block: b}
			if b.Kind == markdown.KindCode {
				out[i].HighlightKey = HighlightKey(b.Language, b.Code())
			}
		}
		p := filepath.Join(opts.OutDir, "blocks", strconv.Itoa(a.ID)+".json")
		if err := writeJSONFile(p, out); err != nil {
			return Manifest{}, err
		}
	}

	markup := make(map[highlight.ThemeID]map[string]highlight.Result, len(opts.Themes))
	for _, theme := range opts.Themes {
		markup[theme] = make(map[string]highlight.Result, len(jobs))
	}
	svc.Highlighter().Cache().Range(func(key string, e highlight.Entry) bool {
		theme, lang, code, ok := highlight.SplitKey(key)
		if m, want := markup[theme]; ok && want {
			m[HighlightKey(lang, code)] = e.Result()
		}
		return true
	})
	for _, theme := range opts.Themes {
		p := filepath.Join(opts.OutDir, "highlight", string(theme)+".json")
		if err := writeJSONFile(p, markup[theme]); err != nil {
			return Manifest{}, err
		}
	}

	m := Manifest{
		GeneratedAt: time.Now().UTC(),
		Articles:    len(articles),
		CodeBlocks:  len(jobs),
		Plain:       plain,
		Themes:      opts.Themes,
	}
	if err := writeJSONFile(filepath.Join(opts.OutDir, "manifest.json"), m); err != nil {
		return Manifest{}, err
	}
	logger.Info("export: bundle written", slog.String("dir", opts.OutDir), slog.Int("articles", m.Articles))
	return m, nil
}
