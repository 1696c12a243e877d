package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/search"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Content   ContentConfig     `yaml:"content"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Highlight HighlightConfig   `yaml:"highlight"`
	Search    SearchConfig      `yaml:"search"`
	Build     BuildConfig       `yaml:"build"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Highlight.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Build.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// CORSOrigin, when set, is allowed to call the API from a browser.
	CORSOrigin string `yaml:"cors_origin"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the path to the article directory.
type ContentConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CatalogConfig holds the SQLite catalog DSN. Empty means a shared
// in-memory database.
type CatalogConfig struct {
	DSN string `yaml:"dsn"`
}

// HighlightConfig controls code highlighting.
type HighlightConfig struct {
	DefaultTheme string `yaml:"default_theme"`
	// Prewarm renders every code block in the default theme at startup.
	Prewarm            bool `yaml:"prewarm"`
	PrewarmConcurrency int  `yaml:"prewarm_concurrency"`
}

// Validate validates the highlight configuration.
func (c *HighlightConfig) Validate() error {
	themes := make([]any, 0, 4)
	for _, t := range highlight.Themes() {
		themes = append(themes, string(t))
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultTheme, validation.Required, validation.In(themes...)),
		validation.Field(&c.PrewarmConcurrency, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// Theme returns the configured default theme.
func (c *HighlightConfig) Theme() highlight.ThemeID {
	return highlight.ParseTheme(c.DefaultTheme)
}

// SearchConfig tunes the fuzzy index.
type SearchConfig struct {
	Threshold float64 `yaml:"threshold"`
	Limit     int     `yaml:"limit"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Threshold, validation.Required, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Limit, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// Options returns index options with the default field weights.
func (c *SearchConfig) Options() search.Options {
	opts := search.DefaultOptions()
	opts.Threshold = c.Threshold
	opts.Limit = c.Limit
	return opts
}

// BuildConfig holds static bundle settings.
type BuildConfig struct {
	OutDir string `yaml:"out_dir"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutDir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path: "./articles",
		},
		Highlight: HighlightConfig{
			DefaultTheme:       string(highlight.DefaultTheme),
			PrewarmConcurrency: 4,
		},
		Search: SearchConfig{
			Threshold: search.DefaultThreshold,
			Limit:     search.DefaultLimit,
		},
		Build: BuildConfig{
			OutDir: "./dist",
		},
	}
}
