package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/rixa/internal/apperr"
	"github.com/starford/rixa/internal/content"
	"github.com/starford/rixa/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testContent(t *testing.T, files map[string]string) (string, *content.FS) {
	t.Helper()
	dir := t.TempDir()
	for rel, data := range files {
		writeFile(t, dir, rel, data)
	}
	store, err := content.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

func writeFile(t *testing.T, root, rel, data string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func article(path, category string, tags ...string) models.Article {
	return models.Article{
		ID:        1,
		Path:      path,
		Title:     filepath.Base(path),
		Category:  category,
		Tags:      tags,
		Checksum:  "cs-" + path,
		Content:   "body of " + path,
		UpdatedAt: time.Now(),
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM articles`).Scan(&count); err != nil {
		t.Fatalf("articles table missing: %v", err)
	}
}

func TestOpen_DefaultInMemory(t *testing.T) {
	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.UpsertArticle(article("a.md", "x")); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}
}

func TestUpsertRenumbersByPath(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"c.md", "a.md", "b/z.md"} {
		if err := db.UpsertArticle(article(p, "x")); err != nil {
			t.Fatalf("UpsertArticle(%s): %v", p, err)
		}
	}

	list, err := db.Articles()
	if err != nil {
		t.Fatalf("Articles: %v", err)
	}
	want := []string{"a.md", "b/z.md", "c.md"}
	for i, a := range list {
		if a.Path != want[i] || a.ID != i+1 {
			t.Errorf("list[%d] = %d %q, want %d %q", i, a.ID, a.Path, i+1, want[i])
		}
	}

	if err := db.DeleteArticle("a.md"); err != nil {
		t.Fatalf("DeleteArticle: %v", err)
	}
	got, err := db.Article(1)
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if got.Path != "b/z.md" {
		t.Errorf("id 1 after delete = %q", got.Path)
	}
}

func TestArticle_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.Article(42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestArticle_RoundTripsFields(t *testing.T) {
	db := testDB(t)
	in := article("go/tests.md", "go", "testing", "tdd")
	in.DisplayTitle = "Tests"
	in.Excerpt = "short"
	in.ReadTime = "2 min"
	in.Date = "2024-01-02"
	in.Image = "/img.png"
	in.Language = "markdown"
	if err := db.UpsertArticle(in); err != nil {
		t.Fatal(err)
	}

	got, err := db.Article(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayTitle != "Tests" || got.ReadTime != "2 min" || got.Date != "2024-01-02" ||
		got.Image != "/img.png" || got.Content != in.Content || len(got.Tags) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestListArticles_Filters(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArticle(article("go/a.md", "go", "testing"))
	_ = db.UpsertArticle(article("go/b.md", "go"))
	_ = db.UpsertArticle(article("rust/c.md", "rust", "testing"))

	all, _ := db.ListArticles("", "")
	if len(all) != 3 {
		t.Fatalf("all = %d", len(all))
	}
	if all[0].Content != "" {
		t.Error("list results should not carry bodies")
	}

	byCat, _ := db.ListArticles("go", "")
	if len(byCat) != 2 {
		t.Errorf("category go = %d, want 2", len(byCat))
	}

	byTag, _ := db.ListArticles("", "testing")
	if len(byTag) != 2 {
		t.Errorf("tag testing = %d, want 2", len(byTag))
	}

	both, _ := db.ListArticles("rust", "testing")
	if len(both) != 1 || both[0].Path != "rust/c.md" {
		t.Errorf("rust+testing = %+v", both)
	}

	cats, _ := db.Categories()
	if len(cats) != 2 || cats[0] != "go" || cats[1] != "rust" {
		t.Errorf("categories = %v", cats)
	}
}

func TestSync(t *testing.T) {
	dir, store := testContent(t, map[string]string{
		"guides/intro.md": "# Intro\nhello",
		"notes.md":        "---\ntitle: Notes\n---\nbody",
	})
	db := testDB(t)
	ctx := context.Background()

	changed, err := Sync(ctx, db, store, quietLogger())
	if err != nil || !changed {
		t.Fatalf("first sync: changed=%v err=%v", changed, err)
	}
	list, _ := db.Articles()
	if len(list) != 2 || list[0].Path != "guides/intro.md" || list[1].DisplayTitle != "Notes" {
		t.Fatalf("unexpected articles: %+v", list)
	}

	changed, err = Sync(ctx, db, store, quietLogger())
	if err != nil || changed {
		t.Errorf("second sync should be a no-op: changed=%v err=%v", changed, err)
	}

	writeFile(t, dir, "notes.md", "---\ntitle: Renamed\n---\nbody")
	_ = os.Remove(filepath.Join(dir, "guides", "intro.md"))

	changed, err = Sync(ctx, db, store, quietLogger())
	if err != nil || !changed {
		t.Fatalf("third sync: changed=%v err=%v", changed, err)
	}
	list, _ = db.Articles()
	if len(list) != 1 || list[0].DisplayTitle != "Renamed" || list[0].ID != 1 {
		t.Errorf("unexpected articles after change: %+v", list)
	}
}

func TestSync_CancelledContext(t *testing.T) {
	_, store := testContent(t, map[string]string{"a.md": "a"})
	db := testDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Sync(ctx, db, store, quietLogger()); err == nil {
		t.Error("expected context error")
	}
}
