package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfig(t *testing.T, files map[string]string) *Config {
	t.Helper()
	dir := t.TempDir()
	for rel, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := NewDefaultConfig()
	cfg.Content.Path = dir
	cfg.Catalog.DSN = filepath.Join(t.TempDir(), "catalog.db")
	cfg.Build.OutDir = filepath.Join(t.TempDir(), "dist")
	return cfg
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

var sampleFiles = map[string]string{
	"devops/docker-compose.md": "# Compose\n\n```yaml\nservices: {}\n```\n",
	"go/testing.md":            "Table driven tests.\n",
}

func TestSearchCommand_Table(t *testing.T) {
	var out bytes.Buffer
	err := Search(context.Background(), "compose", false, WithConfig(testConfig(t, sampleFiles)), WithOutput(&out), quiet())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Docker Compose") || !strings.Contains(out.String(), "devops/docker-compose.md") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestSearchCommand_JSONAndNoMatches(t *testing.T) {
	cfg := testConfig(t, sampleFiles)

	var out bytes.Buffer
	if err := Search(context.Background(), "tests", true, WithConfig(cfg), WithOutput(&out), quiet()); err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Status  string `json:"status"`
		Results []struct {
			Path string `json:"path"`
		} `json:"results"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "results" || resp.Results[0].Path != "go/testing.md" {
		t.Errorf("unexpected response: %+v", resp)
	}

	out.Reset()
	if err := Search(context.Background(), "xylophone", false, WithConfig(cfg), WithOutput(&out), quiet()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `No results for "xylophone"`) {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestBuildCommand(t *testing.T) {
	cfg := testConfig(t, sampleFiles)
	if err := Build(context.Background(), "", WithConfig(cfg), quiet()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"manifest.json", "articles.json", "tree.json", "blocks/1.json", "highlight/aura-dark.json"} {
		if _, err := os.Stat(filepath.Join(cfg.Build.OutDir, filepath.FromSlash(name))); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestCommands_RequireConfig(t *testing.T) {
	if err := Search(context.Background(), "x", false); err == nil {
		t.Error("expected error without config")
	}
}

func TestCommands_MissingContentDir(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Path = filepath.Join(t.TempDir(), "missing")
	if err := Build(context.Background(), "", WithConfig(cfg), quiet()); err == nil {
		t.Error("expected error for missing content directory")
	}
}
