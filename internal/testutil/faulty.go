package testutil

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/fluks/pdfsearch/internal/models"
	"github.com/fluks/pdfsearch/internal/storage"
)

// InjectedError marks an error returned by Faulty rather than the
// underlying provider.
type InjectedError struct {
	Op   string
	Path string
	Err  error
}

func (e *InjectedError) Error() string {
	return "testutil: injected " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) came from Faulty.
func IsInjected(err error) bool {
	var injected *InjectedError
	return errors.As(err, &injected)
}

// Faulty wraps a storage.Provider and fails selected operations on
// selected paths. Keys of the maps are cleaned paths as the caller passes
// them.
type Faulty struct {
	storage.Provider
	ReadDirErrs   map[string]error
	StatErrs      map[string]error
	CanonicalErrs map[string]error
}

var _ storage.Provider = (*Faulty)(nil)

func (f *Faulty) ReadDir(dir string) ([]fs.DirEntry, error) {
	if err, ok := f.ReadDirErrs[filepath.Clean(dir)]; ok {
		return nil, &InjectedError{Op: "readdir", Path: dir, Err: err}
	}
	return f.Provider.ReadDir(dir)
}

func (f *Faulty) Stat(path string) (models.FileMetadata, error) {
	if err, ok := f.StatErrs[filepath.Clean(path)]; ok {
		return models.FileMetadata{}, &InjectedError{Op: "stat", Path: path, Err: err}
	}
	return f.Provider.Stat(path)
}

func (f *Faulty) Canonical(path string) (string, error) {
	if err, ok := f.CanonicalErrs[filepath.Clean(path)]; ok {
		return "", &InjectedError{Op: "canonical", Path: path, Err: err}
	}
	return f.Provider.Canonical(path)
}
