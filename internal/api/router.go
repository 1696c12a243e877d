package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/rixa/internal/library"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events. contentRoot, if set,
// enables GET /images/{filename}.
func NewRouter(svc *library.Service, sseHandler http.Handler, contentRoot, corsOrigin string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(corsOrigin))

	r.Get("/articles", h.ListArticles)
	r.Get("/articles/{id}", h.GetArticle)
	r.Get("/articles/{id}/blocks", h.ArticleBlocks)
	r.Get("/categories", h.Categories)
	r.Get("/tree", h.Tree)

	r.Get("/search", h.Search)

	r.Post("/highlight", h.Highlight)
	r.Get("/themes", h.Themes)

	if contentRoot != "" {
		r.Get("/images/{filename}", NewImageHandler(contentRoot).ServeFile)
	}

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
