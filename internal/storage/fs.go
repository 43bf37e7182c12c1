package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fluks/pdfsearch/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct{}

var _ Provider = FS{}

// NewFS returns the local file system provider.
func NewFS() FS {
	return FS{}
}

// ReadDir returns the entries of dir sorted by name.
func (FS) ReadDir(dir string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return entries, fmt.Errorf("storage: read dir %s: %w", dir, err)
	}
	return entries, nil
}

// Stat returns the path and modification time of the file at path.
func (FS) Stat(path string) (models.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.FileMetadata{}, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return models.FileMetadata{Path: path, ModTime: info.ModTime()}, nil
}

// Canonical resolves path to an absolute path with every symlink evaluated.
func (FS) Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("storage: resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("storage: resolve %s: %w", path, err)
	}
	return resolved, nil
}
