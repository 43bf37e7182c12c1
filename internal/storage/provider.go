// Package storage defines the read-only filesystem view the catalog uses to
// walk document roots and check indexed paths.
package storage

import (
	"io/fs"

	"github.com/fluks/pdfsearch/internal/models"
)

// Provider is the interface for the filesystem operations the indexer and
// synchronizer need.
type Provider interface {
	// ReadDir lists dir without following symlinked entries. Entries that
	// were read before an error may be returned along with it.
	ReadDir(dir string) ([]fs.DirEntry, error)
	// Stat returns metadata for path, following symlinks. A missing file
	// fails with an error matching fs.ErrNotExist.
	Stat(path string) (models.FileMetadata, error)
	// Canonical returns the absolute, symlink-resolved form of path.
	Canonical(path string) (string, error)
}
