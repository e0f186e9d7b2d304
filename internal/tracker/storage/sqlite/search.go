package sqlite

import (
	"context"
	"strings"

	"github.com/opensrc/tracker/internal/tracker"
)

// ftsOperatorChars are FTS5 special characters stripped from user input
// before the query reaches MATCH, so a stray quote or paren never turns
// into a syntax error instead of a search.
const ftsOperatorChars = `"*()+-^:`

var ftsKeywordOperators = map[string]bool{"AND": true, "OR": true, "NOT": true, "NEAR": true}

// sanitizeFTSQuery strips FTS5 special characters and keyword operators
// from a raw search string, leaving plain terms MATCH can consume safely.
func sanitizeFTSQuery(query string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(ftsOperatorChars, r) {
			return ' '
		}
		return r
	}, query)

	fields := strings.Fields(cleaned)
	kept := fields[:0]
	for _, w := range fields {
		if !ftsKeywordOperators[strings.ToUpper(w)] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Search runs a full-text query against title/body/notes, ranked by
// BM25, with each term suffixed for prefix matching and a highlighted
// snippet of up to 32 tokens from the body column.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]tracker.SearchResult, error) {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, nil
	}

	terms := strings.Fields(sanitized)
	for i, t := range terms {
		terms[i] = t + "*"
	}
	prefixQuery := strings.Join(terms, " ")

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.issue_id, i.title,
		       snippet(issues_fts, 2, '<b>', '</b>', '...', 32) AS snippet,
		       rank,
		       i.status
		FROM issues_fts f
		JOIN issues i ON i.id = f.issue_id
		WHERE issues_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, prefixQuery, limit)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Search", err)
	}
	defer rows.Close()

	var out []tracker.SearchResult
	for rows.Next() {
		var r tracker.SearchResult
		var status string
		if err := rows.Scan(&r.IssueID, &r.Title, &r.Snippet, &r.Rank, &status); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "Search", err)
		}
		r.Status = tracker.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}
