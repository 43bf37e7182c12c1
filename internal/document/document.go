// Package document defines the text-extraction capability the catalog
// consumes and provides a PDF implementation of it.
package document

import (
	"errors"
	"path/filepath"
	"strings"
)

// DefaultSuffix is the file suffix indexed when none is configured.
const DefaultSuffix = ".pdf"

var (
	// ErrUnreadable means the file could not be opened or a page could not be built.
	ErrUnreadable = errors.New("unreadable document")
	// ErrUnsupportedFormat means the file is not a document of the supported type.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrInvalidPage means a page index outside [0, PageCount()) was requested.
	ErrInvalidPage = errors.New("invalid page")
)

// Document is an opened document.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageText returns the plain text of page i, 0-based.
	PageText(i int) (string, error)
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Document, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Document, error) {
	return f(path)
}

// HasSuffix reports whether name ends with one of suffixes, ignoring case.
// An empty suffix list means DefaultSuffix.
func HasSuffix(name string, suffixes []string) bool {
	if len(suffixes) == 0 {
		suffixes = []string{DefaultSuffix}
	}
	lower := strings.ToLower(filepath.Base(name))
	for _, s := range suffixes {
		s = strings.ToLower(s)
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}
