package api

import (
	"github.com/starford/rixa/internal/library"
	"github.com/starford/rixa/internal/models"
)

// HighlightRequest is the body of POST /api/highlight.
type HighlightRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// ArticleListResponse wraps article listings.
type ArticleListResponse struct {
	Articles []models.Article `json:"articles"`
	Total    int              `json:"total"`
}

// BlocksResponse is the parsed body of one article.
type BlocksResponse struct {
	ID     int                 `json:"id"`
	Theme  string              `json:"theme"`
	Blocks []library.BlockView `json:"blocks"`
}

// ThemeInfo describes one selectable theme.
type ThemeInfo struct {
	ID          string `json:"id"`
	EngineTheme string `json:"engineTheme"`
	Default     bool   `json:"default,omitempty"`
}

// SearchResponse is the search answer (aliased from the domain layer).
type SearchResponse = library.SearchResponse
