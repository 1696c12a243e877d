package catalog

import "github.com/starford/rixa/internal/models"

// Catalog defines the article storage operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Catalog interface {
	UpsertArticle(a models.Article) error
	DeleteArticle(path string) error
	Checksums() (map[string]string, error)
	Articles() ([]models.Article, error)
	Article(id int) (*models.Article, error)
	ListArticles(category, tag string) ([]models.Article, error)
	Categories() ([]string, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
