package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/rixa/internal/content"
	"github.com/starford/rixa/internal/models"
)

// Sync walks the content directory and brings the catalog up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the catalog
//
// It reports whether anything changed.
func Sync(ctx context.Context, db *DB, store content.Store, logger *slog.Logger) (bool, error) {
	metas, err := store.List("")
	if err != nil {
		return false, err
	}

	checksums, err := db.Checksums()
	if err != nil {
		return false, err
	}

	changed := false
	disk := make(map[string]struct{}, len(metas))
	for i, m := range metas {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m, data, i+1); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		changed = true
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteArticle(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		changed = true
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	return changed, nil
}

// indexFile builds the article for data and upserts it. id is provisional;
// the catalog renumbers by path on every write.
func indexFile(db *DB, meta models.ArticleMetadata, data []byte, id int) error {
	updated := meta.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	a, err := content.BuildArticle(meta.Path, data, id, updated)
	if err != nil {
		return err
	}
	return db.UpsertArticle(a)
}
