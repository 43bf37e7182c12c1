package catalog

import (
	"context"
	"fmt"

	"github.com/fluks/pdfsearch/internal/apperr"
	"github.com/fluks/pdfsearch/internal/models"
)

// UnlimitedMatches as the limit returns every matching page.
const UnlimitedMatches = 0

const (
	searchSQL = `
		SELECT d.path
		  FROM pages p
		  JOIN documents d ON d.id = p.document_id
		 WHERE p.text LIKE ?1
		 ORDER BY p.rowid`

	// The page count is a correlated sub-query so plain searches never pay
	// for it.
	searchVerboseSQL = `
		SELECT d.path, p.text, p.page,
		       (SELECT count(*) FROM pages p1 WHERE p1.document_id = p.document_id)
		  FROM pages p
		  JOIN documents d ON d.id = p.document_id
		 WHERE p.text LIKE ?1
		 ORDER BY p.rowid`
)

// Query returns one result per page whose text contains text. Matching uses
// SQLite's LIKE, so it ignores ASCII case, and wildcard characters in text
// ('%' and '_') keep their LIKE meaning.
//
// limit bounds the number of results; UnlimitedMatches returns all of them.
// With verbose set each result also carries the page number, the page count
// of its document and a snippet of up to five words on each side of the
// first match on that page.
func (db *DB) Query(ctx context.Context, text string, verbose bool, limit int) ([]models.QueryResult, error) {
	if text == "" {
		return nil, fmt.Errorf("catalog: query: %w: empty query", apperr.ErrInvalidArgument)
	}
	if limit < 0 {
		return nil, fmt.Errorf("catalog: query: %w: negative limit %d", apperr.ErrInvalidArgument, limit)
	}

	q := searchSQL
	var snip *snippetter
	if verbose {
		q = searchVerboseSQL
		snip = newSnippetter(text)
	}

	stmt, err := db.conn.PrepareContext(ctx, q)
	if err != nil {
		return nil, storageError("prepare query", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, "%"+text+"%")
	if err != nil {
		return nil, storageError("query", err)
	}
	defer rows.Close()

	var results []models.QueryResult
	for n := 1; rows.Next(); n++ {
		if limit != UnlimitedMatches && n > limit {
			break
		}
		var r models.QueryResult
		if !verbose {
			if err := rows.Scan(&r.Path); err != nil {
				return nil, storageError("query", err)
			}
			results = append(results, r)
			continue
		}

		var pageText string
		if err := rows.Scan(&r.Path, &pageText, &r.Page, &r.Pages); err != nil {
			return nil, storageError("query", err)
		}
		r.Snippet = snip.Snip(pageText)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("query", err)
	}
	return results, nil
}
