// Package models defines the domain types for pdfsearch.
package models

import "time"

// Document represents one indexed file in the catalog.
type Document struct {
	ID           int64  `json:"id"`
	Path         string `json:"path"`          // canonical: absolute, symlinks resolved
	LastModified int64  `json:"last_modified"` // Unix seconds of the file mtime at index time
}

// Page holds the extracted text of one page of a Document.
type Page struct {
	DocumentID int64  `json:"document_id"`
	Number     int    `json:"page"` // 1-based
	Text       string `json:"text"`
}

// QueryResult is one search hit. Page, Pages and Snippet are only
// populated for verbose queries.
type QueryResult struct {
	Path    string `json:"path"`
	Page    int    `json:"page,omitempty"`
	Pages   int    `json:"pages,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// FileMetadata is what the filesystem reports about a candidate file.
type FileMetadata struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
}

// Stamp converts a modification time into the catalog's last_modified value.
func (m FileMetadata) Stamp() int64 {
	return m.ModTime.Unix()
}
