package catalog

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
)

// UpdateReport counts what one Update call did with each catalog row.
type UpdateReport struct {
	Removed   int
	Refreshed int
	Unchanged int
	Skipped   int
}

// Update reconciles the catalog with the filesystem without walking any
// directory:
//   - documents whose file no longer exists are deleted with their pages
//   - documents whose file is newer than the stored timestamp are re-extracted
//
// Like Index it runs in one transaction, skips rows that fail, and only
// fails as a whole on a storage error at commit or a cancelled context.
func (db *DB) Update(ctx context.Context) (UpdateReport, error) {
	var report UpdateReport

	w, err := db.begin(ctx)
	if err != nil {
		return report, err
	}
	defer w.rollback()

	docs, err := w.stmts.documents(ctx)
	if err != nil {
		return report, err
	}

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		logger := db.logger.With(slog.String("path", d.Path))

		meta, err := db.fs.Stat(d.Path)
		if errors.Is(err, fs.ErrNotExist) {
			if err := w.stmts.remove(ctx, d.ID); err != nil {
				logger.Warn("update: delete failed", slog.String("error", err.Error()))
				report.Skipped++
				continue
			}
			logger.Debug("update: removed")
			report.Removed++
			continue
		}
		if err != nil {
			logger.Warn("update: stat failed", slog.String("error", err.Error()))
			report.Skipped++
			continue
		}

		stamp := meta.Stamp()
		if stamp <= d.LastModified {
			report.Unchanged++
			continue
		}

		texts, err := db.extract(d.Path)
		if err != nil {
			logger.Warn("update: extract failed", slog.String("error", err.Error()))
			report.Skipped++
			continue
		}
		err = w.savepoint(ctx, func() error {
			return w.refresh(ctx, d.ID, stamp, texts)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logger.Warn("update: refresh failed", slog.String("error", err.Error()))
			report.Skipped++
			continue
		}
		logger.Debug("update: refreshed", slog.Int("pages", len(texts)))
		report.Refreshed++
	}

	if err := w.commit(); err != nil {
		return report, err
	}
	db.logger.Info("update: done",
		slog.Int("removed", report.Removed),
		slog.Int("refreshed", report.Refreshed),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("skipped", report.Skipped))
	return report, nil
}
