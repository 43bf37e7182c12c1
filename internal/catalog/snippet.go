package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// snippetWords is how many whitespace-delimited words a snippet keeps on
// each side of the match.
const snippetWords = 5

// snippetter cuts context windows around a query in page text.
type snippetter struct {
	query string
	re    *regexp.Regexp
}

// newSnippetter builds the window pattern for query. Wildcards are
// translated the way LIKE reads them so the window lands on the same text
// the database matched.
func newSnippetter(query string) *snippetter {
	pattern := fmt.Sprintf(`(?is)(?:\S+\s+){0,%d}\S*%s\S*(?:\s+\S+){0,%d}`,
		snippetWords, likeToRegexp(query), snippetWords)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &snippetter{query: query}
	}
	return &snippetter{query: query, re: re}
}

// Snip returns the first window found in text, or the bare query when there
// is none.
func (s *snippetter) Snip(text string) string {
	if s.re == nil {
		return s.query
	}
	m := s.re.FindString(text)
	if m == "" {
		return s.query
	}
	return m
}

// likeToRegexp quotes query for a regexp, keeping '%' and '_' as LIKE
// wildcards.
func likeToRegexp(query string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(query); i++ {
		var wild string
		switch query[i] {
		case '%':
			wild = `.*?`
		case '_':
			wild = `.`
		default:
			continue
		}
		b.WriteString(regexp.QuoteMeta(query[start:i]))
		b.WriteString(wild)
		start = i + 1
	}
	b.WriteString(regexp.QuoteMeta(query[start:]))
	return b.String()
}
