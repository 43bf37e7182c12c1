package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fluks/pdfsearch/internal/models"
)

// statements is the fixed set of parameterized operations through which
// index and update mutate the catalog. It is prepared on one transaction at
// the start of a call and closed at its end.
type statements struct {
	lookupDocument *sql.Stmt
	insertDocument *sql.Stmt
	updateDocument *sql.Stmt
	deleteDocument *sql.Stmt
	allDocuments   *sql.Stmt
	insertPage     *sql.Stmt
	deletePages    *sql.Stmt
}

func prepareStatements(ctx context.Context, tx *sql.Tx) (*statements, error) {
	s := &statements{}
	for _, p := range []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.lookupDocument, `SELECT id, last_modified FROM documents WHERE path = ?1`},
		{&s.insertDocument, `INSERT INTO documents (path, last_modified) VALUES (?1, ?2)`},
		{&s.updateDocument, `UPDATE documents SET last_modified = ?1 WHERE id = ?2`},
		{&s.deleteDocument, `DELETE FROM documents WHERE id = ?1`},
		{&s.allDocuments, `SELECT id, path, last_modified FROM documents ORDER BY id`},
		{&s.insertPage, `INSERT INTO pages (text, page, document_id) VALUES (?1, ?2, ?3)`},
		{&s.deletePages, `DELETE FROM pages WHERE document_id = ?1`},
	} {
		stmt, err := tx.PrepareContext(ctx, p.query)
		if err != nil {
			s.Close()
			return nil, storageError("prepare", err)
		}
		*p.dst = stmt
	}
	return s, nil
}

// Close closes every prepared statement.
func (s *statements) Close() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{
		s.lookupDocument, s.insertDocument, s.updateDocument, s.deleteDocument,
		s.allDocuments, s.insertPage, s.deletePages,
	} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	return errors.Join(errs...)
}

// lookup returns the document stored under the canonical path. ok is false
// when there is no such row.
func (s *statements) lookup(ctx context.Context, path string) (doc models.Document, ok bool, err error) {
	var (
		id           sql.Null[int64]
		lastModified sql.Null[int64]
	)
	err = s.lookupDocument.QueryRowContext(ctx, path).Scan(&id, &lastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, false, nil
	}
	if err != nil {
		return models.Document{}, false, storageError("lookup document", err)
	}
	if !id.Valid {
		return models.Document{}, false, nil
	}
	return models.Document{ID: id.V, Path: path, LastModified: lastModified.V}, true, nil
}

func (s *statements) insert(ctx context.Context, path string, lastModified int64) (int64, error) {
	res, err := s.insertDocument.ExecContext(ctx, path, lastModified)
	if err != nil {
		return 0, storageError("insert document", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageError("insert document", err)
	}
	return id, nil
}

func (s *statements) touch(ctx context.Context, id, lastModified int64) error {
	_, err := s.updateDocument.ExecContext(ctx, lastModified, id)
	return storageError("update document", err)
}

func (s *statements) remove(ctx context.Context, id int64) error {
	_, err := s.deleteDocument.ExecContext(ctx, id)
	return storageError("delete document", err)
}

func (s *statements) clearPages(ctx context.Context, id int64) error {
	_, err := s.deletePages.ExecContext(ctx, id)
	return storageError("delete pages", err)
}

func (s *statements) addPage(ctx context.Context, p models.Page) error {
	_, err := s.insertPage.ExecContext(ctx, p.Text, p.Number, p.DocumentID)
	return storageError("insert page", err)
}

// documents drains the full document list. The cursor is closed before the
// caller starts mutating rows.
func (s *statements) documents(ctx context.Context) ([]models.Document, error) {
	rows, err := s.allDocuments.QueryContext(ctx)
	if err != nil {
		return nil, storageError("list documents", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Path, &d.LastModified); err != nil {
			return nil, storageError("list documents", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list documents", err)
	}
	return out, nil
}
