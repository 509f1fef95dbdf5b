// Package catalog tracks which documents have been ingested, independent of
// their vector representations. The catalog is a SQLite file co-located with
// the vector index's persisted files; every mutation is durable immediately.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/paperstack/askdoc/internal/models"
)

// Catalog is the durable record of ingested documents. Filenames are
// logically unique but not enforced: recording the same filename twice
// appends a second entry, and Remove deletes all matching entries.
//
// Remove never touches the vector index. A removed document disappears from
// listings but its vectors stay searchable until the index is rebuilt; this
// divergence is intended behavior, not a defect.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path and initializes the
// schema. Parent directories are created if they do not exist.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT NOT NULL,
		filename TEXT NOT NULL,
		extension TEXT NOT NULL,
		chunk_count INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename);
	`
	_, err := db.Exec(schema)
	return err
}

// Record appends a document's metadata. Duplicate filenames are legal and
// produce two entries.
func (c *Catalog) Record(ctx context.Context, meta models.DocumentMetadata) error {
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, extension, chunk_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		meta.ID, meta.Filename, meta.Extension, meta.ChunkCount, meta.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record document %s: %w", meta.Filename, err)
	}
	return nil
}

// Remove deletes every entry whose filename matches and reports whether any
// entry was removed. An unknown filename is not an error.
func (c *Catalog) Remove(ctx context.Context, filename string) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE filename = ?`, filename)
	if err != nil {
		return false, fmt.Errorf("remove document %s: %w", filename, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns the catalog contents in insertion order.
func (c *Catalog) List(ctx context.Context) ([]models.DocumentMetadata, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, filename, extension, chunk_count, created_at FROM documents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.DocumentMetadata, 0)
	for rows.Next() {
		var m models.DocumentMetadata
		if err := rows.Scan(&m.ID, &m.Filename, &m.Extension, &m.ChunkCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, m)
	}
	return docs, rows.Err()
}

// CountDocuments returns the number of catalog entries.
func (c *Catalog) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
