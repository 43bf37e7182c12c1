// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/fluks/pdfsearch/internal/apperr"
	"github.com/fluks/pdfsearch/internal/catalog"
	"github.com/fluks/pdfsearch/internal/models"
)

// Run opens the catalog, creating its schema when missing, and performs
// the selected action. SIGINT and SIGTERM cancel the action; a cancelled
// index or update keeps nothing.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if err := app.validate(); err != nil {
		return err
	}

	cfg := app.config

	logger := newLogger(app.stderr, cfg.App)
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("action", string(app.action)),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Any("directories", cfg.Index.Directories),
		slog.Int("recursion", cfg.Index.Recursion),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := catalog.Open(cfg.SQLite.Path,
		catalog.WithLogger(logger),
		catalog.WithSuffixes(cfg.Index.Extensions...))
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gCtx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return app.dispatch(runCtx, db, logger)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-runCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (a *application) validate() error {
	err := validation.Validate(string(a.action), validation.Required, validation.In(
		string(ActionIndex), string(ActionUpdate), string(ActionQuery),
		string(ActionVacuum), string(ActionStats)))
	if err != nil {
		return fmt.Errorf("action %q: %w: %w", a.action, apperr.ErrInvalidArgument, err)
	}
	if a.action == ActionQuery && a.query == "" {
		return fmt.Errorf("query: %w: empty query", apperr.ErrInvalidArgument)
	}
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (a *application) dispatch(ctx context.Context, db *catalog.DB, logger *slog.Logger) error {
	cfg := a.config
	switch a.action {
	case ActionIndex:
		dirs := a.directories
		if len(dirs) == 0 {
			dirs = cfg.Index.Directories
		}
		if len(dirs) == 0 {
			logger.Info("No directories given, updating indexed documents")
			_, err := db.Update(ctx)
			return err
		}
		_, err := db.Index(ctx, dirs, cfg.Index.Recursion)
		return err

	case ActionUpdate:
		_, err := db.Update(ctx)
		return err

	case ActionQuery:
		results, err := db.Query(ctx, a.query, cfg.Search.Verbose, cfg.Search.Matches)
		if err != nil {
			return err
		}
		return a.printResults(results, cfg.Search.Verbose)

	case ActionVacuum:
		return db.Vacuum(ctx)

	case ActionStats:
		stats, err := db.Stats(ctx)
		if err != nil {
			return err
		}
		return a.printStats(stats)
	}
	return fmt.Errorf("action %q: %w", a.action, apperr.ErrInvalidArgument)
}

func (a *application) printResults(results []models.QueryResult, verbose bool) error {
	if a.json {
		enc := json.NewEncoder(a.stdout)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range results {
		var err error
		if verbose {
			// Snippets keep the page's line breaks; one result per line.
			_, err = fmt.Fprintf(a.stdout, "%s:%d/%d: %s\n",
				r.Path, r.Page, r.Pages, strings.Join(strings.Fields(r.Snippet), " "))
		} else {
			_, err = fmt.Fprintln(a.stdout, r.Path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *application) printStats(s catalog.Stats) error {
	if a.json {
		return json.NewEncoder(a.stdout).Encode(map[string]int{
			"documents":       s.Documents,
			"pages":           s.Pages,
			"empty_documents": s.EmptyDocuments,
		})
	}
	_, err := fmt.Fprintf(a.stdout, "documents: %d\npages: %d\nempty documents: %d\n",
		s.Documents, s.Pages, s.EmptyDocuments)
	return err
}

// newLogger builds the application logger. In auto mode a terminal gets
// the text handler and anything else gets JSON.
func newLogger(w io.Writer, cfg ApplicationConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	format := cfg.LogFormat
	if format == "" || format == LogFormatAuto {
		format = LogFormatJSON
		if isTerminal(w) {
			format = LogFormatText
		}
	}
	if format == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsUsageError reports whether err stems from invalid input rather than a
// failure while running.
func IsUsageError(err error) bool {
	return errors.Is(err, apperr.ErrInvalidArgument)
}
