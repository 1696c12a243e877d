package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/starford/rixa/internal/export"
	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/mcpserver"
	"github.com/starford/rixa/internal/search"
	"github.com/starford/rixa/internal/tui"
)

// Build writes the static bundle to outDir (the configured one when empty),
// pre-rendering code in every theme.
func Build(ctx context.Context, outDir string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = app.config.Build.OutDir
	}

	svc, closeLib, err := app.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	m, err := export.Build(ctx, svc, export.Options{
		OutDir:      outDir,
		Themes:      highlight.Themes(),
		Concurrency: app.config.Highlight.PrewarmConcurrency,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	app.logger.Info("Build finished",
		slog.String("out_dir", outDir),
		slog.Int("articles", m.Articles),
		slog.Int("code_blocks", m.CodeBlocks))
	return nil
}

// Search runs one query and prints the ranked results as a table, or as
// JSON when asJSON is set.
func Search(ctx context.Context, query string, asJSON bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, closeLib, err := app.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	resp := svc.Search(query)
	if asJSON {
		enc := json.NewEncoder(app.out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	switch resp.Status {
	case search.StatusNoArticles:
		_, err = fmt.Fprintln(app.out, "No articles available.")
		return err
	case search.StatusNoMatches:
		_, err = fmt.Fprintf(app.out, "No results for %q\n", query)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "CATEGORY", "READ", "PATH")
	for _, a := range resp.Results {
		t.Row(fmt.Sprint(a.ID), a.DisplayTitle, a.Category, a.ReadTime, a.Path)
	}
	_, err = fmt.Fprintln(app.out, t.Render())
	return err
}

// Browse opens the terminal browser.
func Browse(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, closeLib, err := app.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	// Terminal markup must not share the API's HTML cache.
	term := highlight.New(highlight.NewEngine(highlight.TerminalLoader, app.logger), highlight.NewCache(), app.logger)
	return tui.Run(svc, term, app.config.Highlight.Theme())
}

// ServeMCP serves the MCP tools on stdin/stdout.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, closeLib, err := app.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	app.logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc, app.version).ServeStdio()
}
