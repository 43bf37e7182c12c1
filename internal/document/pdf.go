package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDF opens PDF files with github.com/ledongthuc/pdf.
type PDF struct{}

var _ Opener = PDF{}

var newReader = pdf.NewReader

// Open parses the PDF at path. Files that cannot be read fail with
// ErrUnreadable; files that do not parse as PDF fail with ErrUnsupportedFormat.
func (PDF) Open(path string) (doc Document, err error) {
	var f *os.File
	// The parser reports some malformed input by panicking.
	defer func() {
		if r := recover(); r != nil {
			if f != nil {
				f.Close()
			}
			doc = nil
			err = fmt.Errorf("document: open %s: %w: %v", path, ErrUnsupportedFormat, r)
		}
	}()

	f, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: open %s: %w: %w", path, ErrUnreadable, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("document: stat %s: %w: %w", path, ErrUnreadable, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("document: open %s: %w: %w", path, ErrUnreadable, fs.ErrInvalid)
	}
	r, err := newReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("document: parse %s: %w: %w", path, ErrUnsupportedFormat, err)
	}
	return &pdfDocument{
		path:  path,
		file:  f,
		r:     r,
		pages: r.NumPage(),
	}, nil
}

type pdfDocument struct {
	path  string
	file  *os.File
	r     *pdf.Reader
	pages int
}

func (d *pdfDocument) PageCount() int {
	return d.pages
}

func (d *pdfDocument) PageText(i int) (text string, err error) {
	if i < 0 || i >= d.pages {
		return "", fmt.Errorf("document: %s page %d of %d: %w", d.path, i, d.pages, ErrInvalidPage)
	}
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("document: %s page %d: %w: %v", d.path, i, ErrUnreadable, r)
		}
	}()

	p := d.r.Page(i + 1)
	if p.V.IsNull() {
		return "", fmt.Errorf("document: %s page %d: %w: page object missing", d.path, i, ErrUnreadable)
	}
	// Font names are page-local resources, so no cache is shared between pages.
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("document: %s page %d: %w: %w", d.path, i, ErrUnreadable, err)
	}
	return text, nil
}

func (d *pdfDocument) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
