package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fluks/pdfsearch/internal/apperr"
)

const (
	documentsTable = "documents"

	// Plain CREATE statements: creating an existing schema is an error.
	schemaSQL = `
CREATE TABLE documents (
	id            INTEGER PRIMARY KEY ASC,
	path          TEXT UNIQUE NOT NULL,
	last_modified INTEGER NOT NULL
);

CREATE TABLE pages (
	text        TEXT DEFAULT '',
	page        INTEGER NOT NULL,
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX idx_documents_last_modified ON documents(last_modified);
CREATE INDEX idx_pages_document_id ON pages(document_id);
`
)

// Exists reports whether the schema has been created. It looks in
// sqlite_master instead of scanning a table.
func (db *DB) Exists(ctx context.Context) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`, documentsTable,
	).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, storageError("check schema", err)
	}
	return true, nil
}

// Create creates the documents and pages tables and their indexes. It fails
// if the schema already exists.
func (db *DB) Create(ctx context.Context) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			err = fmt.Errorf("%w: %w", apperr.ErrAlreadyExists, err)
		}
		return storageError("create schema", err)
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit", err)
	}
	return nil
}

// EnsureSchema creates the schema unless it already exists.
func (db *DB) EnsureSchema(ctx context.Context) error {
	ok, err := db.Exists(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	db.logger.Info("catalog: creating schema")
	return db.Create(ctx)
}

// Vacuum reclaims unused space in the database file.
func (db *DB) Vacuum(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `VACUUM`); err != nil {
		return storageError("vacuum", err)
	}
	return nil
}

// Stats summarises the catalog contents.
type Stats struct {
	Documents int
	Pages     int
	// EmptyDocuments counts documents that have no page rows.
	EmptyDocuments int
}

// Stats returns document and page counts.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := db.conn.QueryRowContext(ctx, `
		SELECT (SELECT count(*) FROM documents),
		       (SELECT count(*) FROM pages),
		       (SELECT count(*) FROM documents d
		         WHERE NOT EXISTS (SELECT 1 FROM pages p WHERE p.document_id = d.id))
	`).Scan(&s.Documents, &s.Pages, &s.EmptyDocuments)
	if err != nil {
		return Stats{}, storageError("stats", err)
	}
	return s, nil
}
