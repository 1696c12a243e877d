package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/rixa/internal/apperr"
	"github.com/starford/rixa/internal/models"
)

const articleColumns = `id, path, title, display_title, excerpt, category, read_time,
	date, image, language, tags, checksum, body, updated_at`

// renumberSQL assigns ids 1..n in path order.
const renumberSQL = `
UPDATE articles SET id = (
	SELECT COUNT(*) FROM articles AS b WHERE b.path <= articles.path
)`

// UpsertArticle inserts or replaces an article and renumbers the set.
func (db *DB) UpsertArticle(a models.Article) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO articles (path, id, title, display_title, excerpt, category, read_time,
			date, image, language, tags, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title         = excluded.title,
			display_title = excluded.display_title,
			excerpt       = excluded.excerpt,
			category      = excluded.category,
			read_time     = excluded.read_time,
			date          = excluded.date,
			image         = excluded.image,
			language      = excluded.language,
			tags          = excluded.tags,
			checksum      = excluded.checksum,
			body          = excluded.body,
			updated_at    = excluded.updated_at
	`, a.Path, a.ID, a.Title, a.DisplayTitle, a.Excerpt, a.Category, a.ReadTime,
		a.Date, a.Image, a.Language, string(tagsJSON), a.Checksum, a.Content, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert article: %w", err)
	}
	if _, err := tx.Exec(renumberSQL); err != nil {
		return fmt.Errorf("catalog: renumber: %w", err)
	}
	return tx.Commit()
}

// DeleteArticle removes an article and renumbers the rest.
func (db *DB) DeleteArticle(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM articles WHERE path = ?`, path); err != nil {
		return fmt.Errorf("catalog: delete article: %w", err)
	}
	if _, err := tx.Exec(renumberSQL); err != nil {
		return fmt.Errorf("catalog: renumber: %w", err)
	}
	return tx.Commit()
}

// Checksums returns the stored checksum of every article, keyed by path.
func (db *DB) Checksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("catalog: checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Articles returns every article with its body, ordered by path.
func (db *DB) Articles() ([]models.Article, error) {
	rows, err := db.conn.Query(`SELECT ` + articleColumns + ` FROM articles ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("catalog: articles: %w", err)
	}
	return scanArticles(rows)
}

// Article returns the article with the given id, or apperr.ErrNotFound.
func (db *DB) Article(id int) (*models.Article, error) {
	row := db.conn.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: article %d: %w", id, err)
	}
	return &a, nil
}

// ListArticles returns article summaries filtered by category and tag; empty
// filters match everything.
func (db *DB) ListArticles(category, tag string) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE 1=1`
	var args []any
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	if tag != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(articles.tags) WHERE json_each.value = ?)`
		args = append(args, tag)
	}
	query += ` ORDER BY path`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list articles: %w", err)
	}
	list, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = list[i].Summary()
	}
	return list, nil
}

// Categories returns the distinct article categories in name order.
func (db *DB) Categories() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT category FROM articles ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("catalog: categories: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner) (models.Article, error) {
	var a models.Article
	var tags string
	err := s.Scan(&a.ID, &a.Path, &a.Title, &a.DisplayTitle, &a.Excerpt, &a.Category,
		&a.ReadTime, &a.Date, &a.Image, &a.Language, &tags, &a.Checksum, &a.Content, &a.UpdatedAt)
	if err != nil {
		return models.Article{}, err
	}
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil || a.Tags == nil {
		a.Tags = []string{}
	}
	return a, nil
}

func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	defer rows.Close()
	var out []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
