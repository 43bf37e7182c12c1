package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fluks/pdfsearch/internal/models"
)

// writer is the transaction shared by one index or update call.
type writer struct {
	db    *DB
	tx    *sql.Tx
	stmts *statements
}

func (db *DB) begin(ctx context.Context) (*writer, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	stmts, err := prepareStatements(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &writer{db: db, tx: tx, stmts: stmts}, nil
}

// commit closes the statements and commits. On failure nothing is kept.
func (w *writer) commit() error {
	if err := w.stmts.Close(); err != nil {
		w.db.logger.Warn("catalog: close statements", slog.String("error", err.Error()))
	}
	if err := w.tx.Commit(); err != nil {
		_ = w.tx.Rollback()
		return storageError("commit", err)
	}
	return nil
}

// rollback abandons the transaction. Safe to call after commit.
func (w *writer) rollback() {
	_ = w.stmts.Close()
	if err := w.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		w.db.logger.Warn("catalog: rollback", slog.String("error", err.Error()))
	}
}

// savepoint runs fn so that a failure undoes only fn's statements and the
// enclosing transaction carries on.
func (w *writer) savepoint(ctx context.Context, fn func() error) error {
	if _, err := w.tx.ExecContext(ctx, `SAVEPOINT document`); err != nil {
		return storageError("savepoint", err)
	}
	if err := fn(); err != nil {
		if _, rbErr := w.tx.ExecContext(ctx, `ROLLBACK TO document; RELEASE document`); rbErr != nil {
			return errors.Join(err, storageError("rollback to savepoint", rbErr))
		}
		return err
	}
	if _, err := w.tx.ExecContext(ctx, `RELEASE document`); err != nil {
		return storageError("release savepoint", err)
	}
	return nil
}

// extract opens path and returns the text of every page. An open failure is
// returned before anything is written. A page that fails to extract is
// logged and kept as empty text so page numbers and counts stay aligned.
func (db *DB) extract(path string) ([]string, error) {
	doc, err := db.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	texts := make([]string, doc.PageCount())
	for i := range texts {
		text, err := doc.PageText(i)
		if err != nil {
			db.logger.Warn("catalog: page skipped",
				slog.String("path", path),
				slog.Int("page", i+1),
				slog.String("error", err.Error()))
			continue
		}
		texts[i] = text
	}
	return texts, nil
}

// create inserts a new document row followed by its pages.
func (w *writer) create(ctx context.Context, path string, stamp int64, texts []string) error {
	id, err := w.stmts.insert(ctx, path, stamp)
	if err != nil {
		return err
	}
	return w.addPages(ctx, id, texts)
}

// refresh replaces every page of an existing document and moves its
// timestamp forward. Old pages are deleted before the new ones are written.
func (w *writer) refresh(ctx context.Context, id, stamp int64, texts []string) error {
	if err := w.stmts.clearPages(ctx, id); err != nil {
		return err
	}
	if err := w.stmts.touch(ctx, id, stamp); err != nil {
		return err
	}
	return w.addPages(ctx, id, texts)
}

func (w *writer) addPages(ctx context.Context, id int64, texts []string) error {
	for i, text := range texts {
		err := w.stmts.addPage(ctx, models.Page{DocumentID: id, Number: i + 1, Text: text})
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return nil
}
