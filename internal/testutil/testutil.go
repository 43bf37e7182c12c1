// Package testutil provides shared test helpers for building document
// trees and databases.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fluks/pdfsearch/internal/document"
)

// DBPath returns the path of a fresh temporary database file that is
// removed when the test ends.
func DBPath(t *testing.T) string {
	t.Helper()
	dbFile, err := os.CreateTemp("", "pdfsearch-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})
	return dbFile.Name()
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Touch sets the modification time of path.
func Touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

// Fake documents are plain text files with pages separated by PageBreak.
// A file starting with BrokenMarker fails to open, and a page starting
// with BadPageMarker fails to extract.
const (
	PageBreak     = "\f"
	BrokenMarker  = "!broken"
	BadPageMarker = "!badpage"
)

// FakeDoc renders pages in the format FakeOpener reads.
func FakeDoc(pages ...string) string {
	return strings.Join(pages, PageBreak)
}

// FakeOpener opens fake documents written with FakeDoc.
var FakeOpener = document.OpenerFunc(func(path string) (document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fake: %w: %w", document.ErrUnreadable, err)
	}
	s := string(data)
	if strings.HasPrefix(s, BrokenMarker) {
		return nil, fmt.Errorf("fake: %s: %w", path, document.ErrUnsupportedFormat)
	}
	var pages []string
	if s != "" {
		pages = strings.Split(s, PageBreak)
	}
	return &fakeDoc{pages: pages}, nil
})

type fakeDoc struct {
	pages []string
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) PageText(i int) (string, error) {
	if i < 0 || i >= len(d.pages) {
		return "", document.ErrInvalidPage
	}
	if strings.HasPrefix(d.pages[i], BadPageMarker) {
		return "", fmt.Errorf("fake: page %d: %w", i, document.ErrUnreadable)
	}
	return d.pages[i], nil
}

func (d *fakeDoc) Close() error { return nil }

// WritePDF writes a minimal PDF with one page per entry of pages. Each
// line of a page becomes one text-showing operation.
func WritePDF(t *testing.T, path string, pages ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, BuildPDF(pages...), 0o644); err != nil {
		t.Fatal(err)
	}
}

// BuildPDF returns the bytes WritePDF writes.
//
// Object layout: 1 catalog, 2 page tree, 3 font, then a page object and its
// content stream for every page.
func BuildPDF(pages ...string) []byte {
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(pages)))
	objects = append(objects,
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		var content strings.Builder
		content.WriteString("BT /F1 12 Tf 14 TL 72 720 Td")
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(&content, " (%s) Tj T*", escapePDF(line))
		}
		content.WriteString(" ET")

		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream",
			content.Len(), content.String()))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)
	return buf.Bytes()
}

func escapePDF(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
