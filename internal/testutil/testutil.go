// Package testutil provides shared test helpers for setting up content
// directories, catalogs and highlighters.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/rixa/internal/catalog"
	"github.com/starford/rixa/internal/content"
	"github.com/starford/rixa/internal/highlight"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "rixa-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content directory holding files (relative
// slash path to body) and a content.FS over it.
func TestContent(t *testing.T, files map[string]string) (string, *content.FS) {
	t.Helper()
	dir := t.TempDir()
	for rel, data := range files {
		WriteFile(t, dir, rel, data)
	}
	store, err := content.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes data at rel under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, data string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestHighlighter returns a highlighter backed by the Chroma engine.
func TestHighlighter(t *testing.T) *highlight.Highlighter {
	t.Helper()
	logger := QuietLogger()
	return highlight.New(highlight.NewEngine(highlight.ChromaLoader, logger), highlight.NewCache(), logger)
}
