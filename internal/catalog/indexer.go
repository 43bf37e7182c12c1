package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/fluks/pdfsearch/internal/apperr"
	"github.com/fluks/pdfsearch/internal/document"
)

// RecurseInfinitely as maxDepth descends into every subdirectory. Any
// negative depth has the same effect.
const RecurseInfinitely = -1

// IndexReport counts what one Index call did with each candidate file.
type IndexReport struct {
	Inserted  int
	Updated   int
	Unchanged int
	// Skipped counts files and directories that failed and were left alone.
	Skipped int
}

// Index walks every root and brings the catalog up to date for each
// document found within maxDepth levels:
//   - new files are inserted with all their pages
//   - files newer than their stored timestamp have their pages replaced
//   - everything else is left untouched
//
// All changes are made in one transaction. Failures on single files or
// subtrees are logged and skipped; only a storage failure at commit (or a
// cancelled context) fails the call, in which case nothing is kept.
func (db *DB) Index(ctx context.Context, roots []string, maxDepth int) (IndexReport, error) {
	var report IndexReport
	if len(roots) == 0 {
		return report, fmt.Errorf("catalog: index: %w: no directories", apperr.ErrInvalidArgument)
	}

	w, err := db.begin(ctx)
	if err != nil {
		return report, err
	}
	defer w.rollback()

	ix := &indexer{writer: w, maxDepth: maxDepth, report: &report}
	for _, root := range roots {
		db.logger.Info("index: walking", slog.String("root", root), slog.Int("max_depth", maxDepth))
		if err := ix.walk(ctx, root, 0); err != nil {
			return report, err
		}
	}

	if err := w.commit(); err != nil {
		return report, err
	}
	db.logger.Info("index: done",
		slog.Int("inserted", report.Inserted),
		slog.Int("updated", report.Updated),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

type indexer struct {
	*writer
	maxDepth int
	report   *IndexReport
}

// walk visits the entries of dir. depth is the level of dir below its root
// and is only ever passed down, so sibling subtrees see the same value.
func (ix *indexer) walk(ctx context.Context, dir string, depth int) error {
	logger := ix.db.logger
	entries, err := ix.db.fs.ReadDir(dir)
	if err != nil {
		logger.Warn("index: read dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		ix.report.Skipped++
		// Whatever was listed before the failure is still indexed.
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, e.Name())

		switch {
		case e.Type()&fs.ModeSymlink != 0:
			logger.Debug("index: symlink not followed", slog.String("path", path))

		case e.IsDir():
			if ix.maxDepth >= 0 && depth >= ix.maxDepth {
				continue
			}
			if err := ix.walk(ctx, path, depth+1); err != nil {
				return err
			}

		case e.Type().IsRegular() && document.HasSuffix(e.Name(), ix.db.suffixes):
			if err := ix.indexFile(ctx, path); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("index: file skipped", slog.String("path", path), slog.String("error", err.Error()))
				ix.report.Skipped++
			}
		}
	}
	return nil
}

// indexFile inserts or refreshes the document at path.
func (ix *indexer) indexFile(ctx context.Context, path string) error {
	canonical, err := ix.db.fs.Canonical(path)
	if err != nil {
		return err
	}
	meta, err := ix.db.fs.Stat(canonical)
	if err != nil {
		return err
	}
	stamp := meta.Stamp()

	doc, found, err := ix.stmts.lookup(ctx, canonical)
	if err != nil {
		return err
	}
	if found && doc.LastModified >= stamp {
		ix.report.Unchanged++
		return nil
	}

	texts, err := ix.db.extract(canonical)
	if err != nil {
		return err
	}

	err = ix.savepoint(ctx, func() error {
		if !found {
			return ix.create(ctx, canonical, stamp, texts)
		}
		return ix.refresh(ctx, doc.ID, stamp, texts)
	})
	if err != nil {
		return err
	}

	if found {
		ix.report.Updated++
		ix.db.logger.Debug("index: updated", slog.String("path", canonical), slog.Int("pages", len(texts)))
	} else {
		ix.report.Inserted++
		ix.db.logger.Debug("index: inserted", slog.String("path", canonical), slog.Int("pages", len(texts)))
	}
	return nil
}
