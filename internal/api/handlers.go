package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/library"
)

// maxHighlightBytes bounds POST /api/highlight bodies.
const maxHighlightBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *library.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *library.Service) *Handler {
	return &Handler{svc: svc}
}

// ListArticles handles GET /api/articles.
//
//	@Summary	List article summaries
//	@Tags		articles
//	@Produce	json
//	@Param		category	query		string	false	"Filter by category"
//	@Param		tag			query		string	false	"Filter by tag"
//	@Success	200			{object}	ArticleListResponse
//	@Router		/articles [get]
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Articles(r.Context(), q.Get("category"), q.Get("tag"))
	if err != nil {
		writeError(w, "list articles", err)
		return
	}
	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: items, Total: len(items)})
}

// GetArticle handles GET /api/articles/{id}.
//
//	@Summary	Get one article with its body
//	@Tags		articles
//	@Produce	json
//	@Param		id	path		int	true	"Article id"
//	@Success	200	{object}	models.Article
//	@Failure	400	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/articles/{id} [get]
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := library.ParseArticleID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get article", err)
		return
	}
	a, err := h.svc.Article(r.Context(), id)
	if err != nil {
		writeError(w, "get article", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ArticleBlocks handles GET /api/articles/{id}/blocks.
//
// Code blocks carry highlight markup only when it is already cached for the
// theme; otherwise the client asks POST /api/highlight and shows plain code
// meanwhile.
//
//	@Summary	Parsed blocks of one article
//	@Tags		articles
//	@Produce	json
//	@Param		id		path		int		true	"Article id"
//	@Param		theme	query		string	false	"Theme id"
//	@Success	200		{object}	BlocksResponse
//	@Failure	404		{object}	errResponse
//	@Router		/articles/{id}/blocks [get]
func (h *Handler) ArticleBlocks(w http.ResponseWriter, r *http.Request) {
	id, err := library.ParseArticleID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "article blocks", err)
		return
	}
	theme := highlight.ParseTheme(r.URL.Query().Get("theme"))
	views, err := h.svc.BlockViews(r.Context(), id, theme)
	if err != nil {
		writeError(w, "article blocks", err)
		return
	}
	writeJSON(w, http.StatusOK, BlocksResponse{ID: id, Theme: string(theme), Blocks: views})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, "categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// Tree handles GET /api/tree.
func (h *Handler) Tree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tree": h.svc.Tree()})
}

// Search handles GET /api/search. An empty query returns the first articles.
//
//	@Summary	Fuzzy search across articles
//	@Tags		search
//	@Produce	json
//	@Param		q	query		string	false	"Search query"
//	@Success	200	{object}	SearchResponse
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Search(r.URL.Query().Get("q")))
}

// Highlight handles POST /api/highlight.
//
//	@Summary	Highlight a code block
//	@Tags		highlight
//	@Accept		json
//	@Produce	json
//	@Param		body	body		HighlightRequest	true	"Code to highlight"
//	@Success	200		{object}	highlight.Result
//	@Failure	400		{object}	errResponse
//	@Router		/highlight [post]
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxHighlightBytes)
	var req HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res := h.svc.Highlight(r.Context(), req.Code, req.Language, highlight.ParseTheme(req.Theme))
	writeJSON(w, http.StatusOK, res)
}

// Themes handles GET /api/themes.
func (h *Handler) Themes(w http.ResponseWriter, _ *http.Request) {
	themes := highlight.Themes()
	out := make([]ThemeInfo, len(themes))
	for i, t := range themes {
		out[i] = ThemeInfo{
			ID:          string(t),
			EngineTheme: highlight.EngineTheme(t),
			Default:     t == highlight.DefaultTheme,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"themes": out})
}
