// Package catalog provides the SQLite-backed index of documents and their
// page text, the indexer and synchronizer that keep it current, and
// substring search over it.
package catalog

import (
	"database/sql"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fluks/pdfsearch/internal/document"
	"github.com/fluks/pdfsearch/internal/storage"
)

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn     *sql.DB
	fs       storage.Provider
	opener   document.Opener
	suffixes []string
	logger   *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// WithOpener sets the document capability. The default opens PDFs.
func WithOpener(o document.Opener) Option {
	return func(db *DB) {
		db.opener = o
	}
}

// WithFilesystem sets the filesystem the indexer walks and the
// synchronizer checks. The default is the local filesystem.
func WithFilesystem(p storage.Provider) Option {
	return func(db *DB) {
		db.fs = p
	}
}

// WithSuffixes sets the file suffixes considered documents, matched
// case-insensitively. The default is document.DefaultSuffix.
func WithSuffixes(suffixes ...string) Option {
	return func(db *DB) {
		db.suffixes = suffixes
	}
}

// Open opens (or creates) the SQLite database file. It does not create the
// schema; see Exists, Create and EnsureSchema.
func Open(dsn string, opts ...Option) (*DB, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+"_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, storageError("open db", err)
	}
	// One writer, one connection: the explicit transaction of index/update
	// must see every statement of the call.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, storageError("ping", err)
	}

	db := &DB{
		conn:     conn,
		fs:       storage.NewFS(),
		opener:   document.PDF{},
		suffixes: []string{document.DefaultSuffix},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

