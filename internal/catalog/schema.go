// Package catalog keeps the article set in SQLite, in step with the content
// directory.
package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDSN keeps the catalog in memory for the life of the process.
const DefaultDSN = "file:rixa?mode=memory&cache=shared"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS articles (
	path          TEXT PRIMARY KEY,
	id            INTEGER NOT NULL DEFAULT 0,
	title         TEXT NOT NULL DEFAULT '',
	display_title TEXT NOT NULL DEFAULT '',
	excerpt       TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	read_time     TEXT NOT NULL DEFAULT '',
	date          TEXT NOT NULL DEFAULT '',
	image         TEXT NOT NULL DEFAULT '',
	language      TEXT NOT NULL DEFAULT '',
	tags          TEXT NOT NULL DEFAULT '[]',
	checksum      TEXT NOT NULL DEFAULT '',
	body          TEXT NOT NULL DEFAULT '',
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_articles_id ON articles(id);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
`

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	memory := isMemory(dsn)

	conn, err := sql.Open("sqlite3", withParams(dsn, memory))
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if memory {
		// A shared in-memory database lives only while a connection is open.
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func withParams(dsn string, memory bool) string {
	params := "_busy_timeout=5000"
	if !memory {
		params = "_journal_mode=WAL&" + params
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + params
}
