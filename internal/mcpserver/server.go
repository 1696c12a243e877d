// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes rixa's article library for LLM integration via stdio.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/rixa/internal/apperr"
	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/library"
)

// Resource URIs.
const (
	FormatURI = "rixa://article-format"
	ThemesURI = "rixa://themes"
)

// Server wraps the MCP server with rixa tools.
type Server struct {
	mcp *server.MCPServer
	svc *library.Service
}

// New creates a new MCP server with all rixa tools registered.
func New(svc *library.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Rixa",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Fuzzy search over article titles, categories, bodies and tags. Returns at most 8 summaries, best first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text; typos are tolerated")),
	), s.searchArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read one article: metadata plus the markdown body without frontmatter."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Article id from search_articles or list_articles")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List article summaries, optionally filtered by category or tag."),
		mcp.WithString("category", mcp.Description("Optional category (first folder of the path)")),
		mcp.WithString("tag", mcp.Description("Optional tag")),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("article_blocks",
		mcp.WithDescription("Return the parsed block structure of an article (headers, lists, tables, code...)."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Article id")),
	), s.articleBlocks)

	s.mcp.AddTool(mcp.NewTool("highlight_code",
		mcp.WithDescription("Highlight a code snippet as themed HTML. Unsupported languages come back plain."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Source text")),
		mcp.WithString("language", mcp.Description("Fence language, e.g. go, ts, yaml")),
		mcp.WithString("theme", mcp.Description("Theme id; see the rixa://themes resource")),
	), s.highlightCode)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Article Format",
			mcp.WithResourceDescription("The markdown subset rixa renders and the frontmatter it reads."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(ThemesURI, "Themes",
			mcp.WithResourceDescription("Selectable themes and the highlight style each maps to."),
			mcp.WithMIMEType("application/json"),
		),
		s.readThemesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// jsonResult leaves markup unescaped so highlighted HTML reads as-is.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.TrimRight(buf.String(), "\n")), nil
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("article not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func articleID(req mcp.CallToolRequest) (int, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, fmt.Errorf("id must be positive: %w", apperr.ErrInvalid)
	}
	return id, nil
}

func (s *Server) searchArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Search(query))
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := articleID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.Article(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(a)
}

func (s *Server) listArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.Articles(ctx, req.GetString("category", ""), req.GetString("tag", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(items)
}

func (s *Server) articleBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := articleID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	blocks, err := s.svc.Blocks(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(blocks)
}

func (s *Server) highlightCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	theme := highlight.ParseTheme(req.GetString("theme", ""))
	return jsonResult(s.svc.Highlight(ctx, code, req.GetString("language", ""), theme))
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     ArticleFormat,
		},
	}, nil
}

type themeInfo struct {
	ID          highlight.ThemeID `json:"id"`
	EngineTheme string            `json:"engineTheme"`
}

func (s *Server) readThemesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var themes []themeInfo
	for _, t := range highlight.Themes() {
		themes = append(themes, themeInfo{ID: t, EngineTheme: highlight.EngineTheme(t)})
	}
	out, err := json.Marshal(themes)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ThemesURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
