package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/rixa/internal"
	pkgconfig "github.com/starford/rixa/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if p := cmd.String("content"); p != "" {
		cfg.Content.Path = p
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.App.HTTP.Port = int(port)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Build(ctx, cmd.String("out"), internal.WithConfig(cfg))
}

func searchArticles(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	quiet := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return internal.Search(ctx, cmd.Args().First(), cmd.Bool("json"),
		internal.WithConfig(cfg), internal.WithLogger(quiet))
}

func browse(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal is owned by the browser.
	discard := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return internal.Browse(ctx, internal.WithConfig(cfg), internal.WithLogger(discard))
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	stderr := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithLogger(stderr), internal.WithVersion(version))
}

func main() {
	cmd := &cli.Command{
		Name:    "rixa",
		Usage:   "Markdown article browser: block parser, cached code highlighting and fuzzy search",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "content",
				Usage:   "Article directory (overrides content.path)",
				Sources: cli.EnvVars("RIXA_CONTENT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the JSON API with live reload",
				Action: serve,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port (overrides app.http.port)"},
				},
			},
			{
				Name:   "build",
				Usage:  "Write the static bundle with pre-rendered code",
				Action: build,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output directory (overrides build.out_dir)"},
				},
			},
			{
				Name:      "search",
				Usage:     "Search articles from the command line",
				ArgsUsage: "<query>",
				Action:    searchArticles,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print the response as JSON"},
				},
			},
			{
				Name:   "browse",
				Usage:  "Browse articles in the terminal",
				Action: browse,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
