package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/rixa/internal/library"
	"github.com/starford/rixa/internal/search"
	"github.com/starford/rixa/internal/sse"
	"github.com/starford/rixa/internal/testutil"
)

const composeDoc = "---\ntitle: Compose\ntags: [containers]\n---\n# Compose\n\nRun **it**.\n\n```yaml\nservices: {}\n```\n"

// testEnv sets up a temp content directory, catalog, service and router.
func testEnv(t *testing.T, files map[string]string) (*library.Service, http.Handler, string) {
	t.Helper()
	dir, store := testutil.TestContent(t, files)
	svc := library.NewService(store, testutil.TestDB(t), testutil.TestHighlighter(t), testutil.QuietLogger(), search.DefaultOptions())
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return svc, NewRouter(svc, nil, dir, ""), dir
}

func defaultFiles() map[string]string {
	return map[string]string{
		"devops/docker-compose.md": composeDoc,
		"go/testing.md":            "Table driven tests.\n",
	}
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestListArticles(t *testing.T) {
	_, router, _ := testEnv(t, defaultFiles())

	w := do(t, router, http.MethodGet, "/articles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ArticleListResponse
	decode(t, w, &resp)
	if resp.Total != 2 || len(resp.Articles) != 2 {
		t.Fatalf("unexpected listing: %+v", resp)
	}
	if resp.Articles[0].Content != "" {
		t.Error("listing should not carry bodies")
	}

	w = do(t, router, http.MethodGet, "/articles?tag=containers", nil)
	decode(t, w, &resp)
	if resp.Total != 1 || resp.Articles[0].Category != "devops" {
		t.Errorf("tag filter: %+v", resp)
	}
}

func TestGetArticle(t *testing.T) {
	_, router, _ := testEnv(t, defaultFiles())

	w := do(t, router, http.MethodGet, "/articles/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var a struct {
		ID      int    `json:"id"`
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	decode(t, w, &a)
	if a.Path != "devops/docker-compose.md" || !strings.HasPrefix(a.Content, "# Compose") {
		t.Errorf("unexpected article: %+v", a)
	}
}

func TestGetArticle_Errors(t *testing.T) {
	_, router, _ := testEnv(t, defaultFiles())

	if w := do(t, router, http.MethodGet, "/articles/99", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing id: status = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/articles/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/articles/99/blocks", nil); w.Code != http.StatusNotFound {
		t.Errorf("blocks of missing id: status = %d", w.Code)
	}
}

func TestArticleBlocks(t *testing.T) {
	svc, router, _ := testEnv(t, defaultFiles())

	var resp struct {
		Theme  string `json:"theme"`
		Blocks []struct {
			Kind        string `json:"kind"`
			Language    string `json:"language"`
			Highlighted bool   `json:"highlighted"`
			Highlight   *struct {
				HTML string `json:"html"`
			} `json:"highlight"`
		} `json:"blocks"`
	}
	decode(t, do(t, router, http.MethodGet, "/articles/1/blocks?theme=nope", nil), &resp)
	if resp.Theme != "default" {
		t.Errorf("unknown theme should fall back, got %q", resp.Theme)
	}
	kinds := make([]string, len(resp.Blocks))
	for i, b := range resp.Blocks {
		kinds[i] = b.Kind
	}
	want := "header,blank,paragraph,blank,code,blank"
	if got := strings.Join(kinds, ","); got != want {
		t.Fatalf("kinds = %s, want %s", got, want)
	}
	if resp.Blocks[4].Highlighted {
		t.Error("code should not be highlighted before any request")
	}

	svc.Highlight(context.Background(), "services: {}", "yaml", "dracula")

	decode(t, do(t, router, http.MethodGet, "/articles/1/blocks?theme=dracula", nil), &resp)
	code := resp.Blocks[4]
	if !code.Highlighted || code.Highlight == nil || !strings.Contains(code.Highlight.HTML, "<pre") {
		t.Errorf("expected cached markup, got %+v", code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router, _ := testEnv(t, defaultFiles())

	var resp SearchResponse
	decode(t, do(t, router, http.MethodGet, "/search?q=compose", nil), &resp)
	if resp.Status != search.StatusResults || resp.Results[0].Path != "devops/docker-compose.md" {
		t.Errorf("unexpected response: %+v", resp)
	}

	decode(t, do(t, router, http.MethodGet, "/search?q=xylophone", nil), &resp)
	if resp.Status != search.StatusNoMatches || len(resp.Results) != 0 {
		t.Errorf("no match: %+v", resp)
	}

	decode(t, do(t, router, http.MethodGet, "/search", nil), &resp)
	if len(resp.Results) != 2 {
		t.Errorf("empty query should list articles, got %d", len(resp.Results))
	}
}

func TestHighlightEndpoint(t *testing.T) {
	_, router, _ := testEnv(t, nil)

	body, _ := json.Marshal(HighlightRequest{Code: "package main", Language: "go", Theme: "one-dark-pro"})
	w := do(t, router, http.MethodPost, "/highlight", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res struct {
		HTML  string `json:"html"`
		Plain bool   `json:"plain"`
	}
	decode(t, w, &res)
	if res.Plain || !strings.Contains(res.HTML, "background-color:transparent") {
		t.Errorf("unexpected result: %+v", res)
	}

	body, _ = json.Marshal(HighlightRequest{Code: "MOVE X", Language: "cobol"})
	decode(t, do(t, router, http.MethodPost, "/highlight", body), &res)
	if res.Plain || !strings.Contains(res.HTML, "MOVE X") {
		t.Errorf("unknown language should render as plain text grammar, got %+v", res)
	}

	if w := do(t, router, http.MethodPost, "/highlight", []byte("{")); w.Code != http.StatusBadRequest {
		t.Errorf("bad body: status = %d", w.Code)
	}
}

func TestThemesAndTree(t *testing.T) {
	_, router, _ := testEnv(t, defaultFiles())

	var themes struct {
		Themes []ThemeInfo `json:"themes"`
	}
	decode(t, do(t, router, http.MethodGet, "/themes", nil), &themes)
	if len(themes.Themes) != 4 || !themes.Themes[0].Default {
		t.Errorf("unexpected themes: %+v", themes)
	}

	var tree struct {
		Tree []struct {
			Name     string `json:"name"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"tree"`
	}
	decode(t, do(t, router, http.MethodGet, "/tree", nil), &tree)
	if len(tree.Tree) != 1 || len(tree.Tree[0].Children) != 2 {
		t.Errorf("unexpected tree: %+v", tree)
	}
}

func TestImages(t *testing.T) {
	_, router, dir := testEnv(t, nil)
	testutil.WriteFile(t, dir, "images/cover.png", "png-bytes")

	w := do(t, router, http.MethodGet, "/images/cover.png", nil)
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodGet, "/images/missing.png", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing image: status = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/images/..", nil); w.Code == http.StatusOK {
		t.Error("traversal should be rejected")
	}
}

func TestCORSMiddleware(t *testing.T) {
	_, store := testutil.TestContent(t, nil)
	svc := library.NewService(store, testutil.TestDB(t), testutil.TestHighlighter(t), testutil.QuietLogger(), search.DefaultOptions())
	router := NewRouter(svc, nil, "", "http://localhost:5173")

	w := do(t, router, http.MethodOptions, "/search", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}

	_, plain, _ := testEnv(t, nil)
	if got := do(t, plain, http.MethodGet, "/search", nil).Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disabled CORS still set %q", got)
	}
}

func TestSSEEvents(t *testing.T) {
	_, store := testutil.TestContent(t, nil)
	svc := library.NewService(store, testutil.TestDB(t), testutil.TestHighlighter(t), testutil.QuietLogger(), search.DefaultOptions())
	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	router := NewRouter(svc, broker, "", "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}
