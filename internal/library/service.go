// Package library is the read side of rixa: it keeps the catalog, the article
// snapshot, the search index and parsed blocks consistent with the content
// directory.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/rixa/internal/apperr"
	"github.com/starford/rixa/internal/catalog"
	"github.com/starford/rixa/internal/content"
	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/markdown"
	"github.com/starford/rixa/internal/models"
	"github.com/starford/rixa/internal/search"
)

// SearchResponse is the answer to one query.
type SearchResponse struct {
	Query   string           `json:"query"`
	Status  search.Status    `json:"status"`
	Total   int              `json:"total"`
	Results []models.Article `json:"results"`
}

// BlockView is a parsed block prepared for display. Code blocks carry their
// highlight result when it is already cached.
type BlockView struct {
	markdown.Block
	Highlighted bool              `json:"highlighted,omitempty"`
	Highlight   *highlight.Result `json:"highlight,omitempty"`
}

// Service coordinates the catalog, search index and highlighter.
type Service struct {
	store      content.Store
	db         *catalog.DB
	hl         *highlight.Highlighter
	logger     *slog.Logger
	searchOpts search.Options

	mu       sync.RWMutex
	articles []models.Article
	byID     map[int]int
	tree     []*models.FolderNode

	index search.Holder[models.Article]

	// blocks caches parsed bodies by article checksum.
	blocks sync.Map
}

// NewService creates a new library service. Call Reload before serving.
func NewService(store content.Store, db *catalog.DB, hl *highlight.Highlighter, logger *slog.Logger, opts search.Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:      store,
		db:         db,
		hl:         hl,
		logger:     logger,
		searchOpts: opts,
		byID:       map[int]int{},
	}
	s.index.Store(search.Build(nil, projectArticle, opts))
	return s
}

// Reload syncs the catalog with the content directory and rebuilds the
// snapshot when anything changed. It reports whether anything changed.
func (s *Service) Reload(ctx context.Context) (bool, error) {
	changed, err := catalog.Sync(ctx, s.db, s.store, s.logger)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	empty := s.articles == nil
	s.mu.RUnlock()
	if changed || empty {
		if err := s.Refresh(); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// Refresh rebuilds the snapshot, tree and search index from the catalog.
func (s *Service) Refresh() error {
	articles, err := s.db.Articles()
	if err != nil {
		return err
	}
	if articles == nil {
		articles = []models.Article{}
	}

	byID := make(map[int]int, len(articles))
	live := make(map[string]struct{}, len(articles))
	for i, a := range articles {
		byID[a.ID] = i
		live[a.Checksum] = struct{}{}
	}
	tree := content.BuildTree(articles)

	s.mu.Lock()
	s.articles, s.byID, s.tree = articles, byID, tree
	s.mu.Unlock()
	s.index.Store(search.Build(articles, projectArticle, s.searchOpts))

	s.blocks.Range(func(k, _ any) bool {
		if _, ok := live[k.(string)]; !ok {
			s.blocks.Delete(k)
		}
		return true
	})

	s.logger.Debug("library: refreshed", slog.Int("articles", len(articles)))
	return nil
}

// Watch follows the content directory, refreshing after every change and
// then calling onChange (if non-nil).
func (s *Service) Watch(ctx context.Context, root string, onChange func(kind, path string)) error {
	return catalog.Watch(ctx, s.db, s.store, root, s.logger, func(kind, path string) {
		if err := s.Refresh(); err != nil {
			s.logger.Warn("library: refresh failed", slog.String("error", err.Error()))
			return
		}
		if onChange != nil {
			onChange(kind, path)
		}
	})
}

// Articles returns article summaries filtered by category and tag.
func (s *Service) Articles(_ context.Context, category, tag string) ([]models.Article, error) {
	list, err := s.db.ListArticles(category, tag)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(list), nil
}

// All returns the current snapshot with bodies, in path order.
func (s *Service) All() []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// Article returns one article with its body.
func (s *Service) Article(_ context.Context, id int) (*models.Article, error) {
	return s.db.Article(id)
}

// Categories returns the distinct categories.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	cats, err := s.db.Categories()
	if err != nil {
		return nil, err
	}
	return nonNilSlice(cats), nil
}

// Tree returns the folder tree of the current snapshot.
func (s *Service) Tree() []*models.FolderNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Blocks returns the parsed body of an article.
func (s *Service) Blocks(_ context.Context, id int) ([]markdown.Block, error) {
	a, ok := s.snapshotArticle(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.parse(a), nil
}

// BlockViews returns the parsed body of an article with cached highlight
// results attached to code blocks for theme.
func (s *Service) BlockViews(ctx context.Context, id int, theme highlight.ThemeID) ([]BlockView, error) {
	blocks, err := s.Blocks(ctx, id)
	if err != nil {
		return nil, err
	}
	views := make([]BlockView, len(blocks))
	for i, b := range blocks {
		views[i] = BlockView{Block: b}
		if b.Kind != markdown.KindCode {
			continue
		}
		if r, ok := s.hl.Lookup(b.Code(), b.Language, theme); ok {
			views[i].Highlighted = true
			views[i].Highlight = &r
		}
	}
	return views, nil
}

// Search runs a query against the current index.
func (s *Service) Search(query string) SearchResponse {
	results, total := s.index.Query(query)
	summaries := make([]models.Article, len(results))
	for i, a := range results {
		summaries[i] = a.Summary()
	}
	return SearchResponse{
		Query:   query,
		Status:  search.Outcome(total, len(results)),
		Total:   total,
		Results: summaries,
	}
}

// SearchArticles runs a query and returns the matching articles with bodies.
func (s *Service) SearchArticles(query string) []models.Article {
	results, _ := s.index.Query(query)
	return results
}

// Highlight renders code for theme; see highlight.Highlighter.Highlight.
func (s *Service) Highlight(ctx context.Context, code, lang string, theme highlight.ThemeID) highlight.Result {
	return s.hl.Highlight(ctx, code, lang, theme)
}

// Highlighter returns the shared highlighter.
func (s *Service) Highlighter() *highlight.Highlighter {
	return s.hl
}

// CodeJobs lists every fenced code block of the snapshot, for pre-warming.
func (s *Service) CodeJobs() []highlight.Job {
	var jobs []highlight.Job
	for _, a := range s.All() {
		for _, b := range s.parse(a) {
			if b.Kind == markdown.KindCode {
				jobs = append(jobs, highlight.Job{Code: b.Code(), Language: b.Language})
			}
		}
	}
	return jobs
}

// ParseArticleID parses a positive article id.
func ParseArticleID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("library: article id %q: %w", raw, apperr.ErrInvalid)
	}
	return id, nil
}

func (s *Service) snapshotArticle(id int) (models.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return models.Article{}, false
	}
	return s.articles[i], true
}

func (s *Service) parse(a models.Article) []markdown.Block {
	if v, ok := s.blocks.Load(a.Checksum); ok {
		return v.([]markdown.Block)
	}
	blocks := markdown.Parse(a.Content)
	s.blocks.Store(a.Checksum, blocks)
	return blocks
}

func projectArticle(a models.Article) search.Record {
	return search.Record{
		DisplayTitle: a.DisplayTitle,
		Title:        a.Title,
		Category:     a.Category,
		Body:         a.Content,
		Tags:         a.Tags,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
