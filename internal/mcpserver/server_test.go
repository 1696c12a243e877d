package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/rixa/internal/library"
	"github.com/starford/rixa/internal/search"
	"github.com/starford/rixa/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, store := testutil.TestContent(t, map[string]string{
		"devops/kubernetes-basics.md": "---\ntags: [k8s]\n---\n# Pods\n\n```yaml\nkind: Pod\n```\n",
		"go/testing.md":               "Table driven tests.\n",
	})
	svc := library.NewService(store, testutil.TestDB(t), testutil.TestHighlighter(t), testutil.QuietLogger(), search.DefaultOptions())
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_articles":
		result, err = srv.searchArticles(ctx, req)
	case "read_article":
		result, err = srv.readArticle(ctx, req)
	case "list_articles":
		result, err = srv.listArticles(ctx, req)
	case "article_blocks":
		result, err = srv.articleBlocks(ctx, req)
	case "highlight_code":
		result, err = srv.highlightCode(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchArticles(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_articles", map[string]interface{}{"query": "kubernets"})
	var resp library.SearchResponse
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != search.StatusResults || resp.Results[0].Path != "devops/kubernetes-basics.md" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if r := callTool(t, srv, "search_articles", map[string]interface{}{}); !r.IsError {
		t.Error("expected error without query")
	}
}

func TestReadArticle(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_article", map[string]interface{}{"id": float64(1)})
	if r.IsError {
		t.Fatalf("read failed: %s", resultText(r))
	}
	var a struct {
		DisplayTitle string `json:"displayTitle"`
		Content      string `json:"content"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &a); err != nil {
		t.Fatal(err)
	}
	if a.DisplayTitle != "Kubernetes Basics" || !strings.HasPrefix(a.Content, "# Pods") {
		t.Errorf("unexpected article: %+v", a)
	}
}

func TestReadArticleMissing(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_article", map[string]interface{}{"id": float64(42)})
	if !r.IsError || resultText(r) != "article not found" {
		t.Errorf("expected not found, got %q", resultText(r))
	}
	if r := callTool(t, srv, "read_article", map[string]interface{}{"id": float64(0)}); !r.IsError {
		t.Error("expected error for id 0")
	}
}

func TestListArticles(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_articles", map[string]interface{}{"category": "go"})
	text := resultText(r)
	if !strings.Contains(text, "go/testing.md") || strings.Contains(text, "kubernetes") {
		t.Errorf("category filter: %s", text)
	}
}

func TestArticleBlocks(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "article_blocks", map[string]interface{}{"id": float64(1)})
	text := resultText(r)
	if !strings.Contains(text, `"kind": "header"`) || !strings.Contains(text, `"language": "yaml"`) {
		t.Errorf("unexpected blocks: %s", text)
	}
}

func TestHighlightCode(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "highlight_code", map[string]interface{}{"code": "fn main() {}", "language": "rs", "theme": "dracula"})
	text := resultText(r)
	if !strings.Contains(text, `"plain": false`) || !strings.Contains(text, "<pre") {
		t.Errorf("unexpected highlight: %s", text)
	}
}

func TestJSONResult_KeepsMarkup(t *testing.T) {
	r, err := jsonResult(map[string]string{"html": "<pre>a & b</pre>"})
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(r)
	if !strings.Contains(text, "<pre>a & b</pre>") || strings.Contains(text, `\u003c`) {
		t.Errorf("markup escaped: %s", text)
	}
	if strings.HasSuffix(text, "\n") {
		t.Errorf("trailing newline: %q", text)
	}
}

func TestResources(t *testing.T) {
	srv := testServer(t)

	contents, err := srv.readThemesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(text, `"one-dark-pro"`) {
		t.Errorf("themes resource: %s", text)
	}

	contents, _ = srv.readFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if contents[0].(mcp.TextResourceContents).Text != ArticleFormat {
		t.Error("format resource mismatch")
	}
}
