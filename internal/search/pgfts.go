package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
// The tsvector is computed on the fly; at this data volume an index is not
// worth the migration.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	base := `
		FROM reviews r
		JOIN documents d ON d.id = r.document_id
		WHERE to_tsvector('english', d.title || ' ' || d.summary || ' ' || r.reviewer_name)
			@@ plainto_tsquery('english', $1)
	`

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, "SELECT count(*) "+base, q.Text).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	dataSQL := fmt.Sprintf(`
		SELECT r.id::text, r.document_id::text, r.version, d.title,
			ts_headline('english', coalesce(d.summary, ''), plainto_tsquery('english', $1), 'MaxFragments=1,MaxWords=30'),
			r.reviewer_name
		%s
		ORDER BY ts_rank(to_tsvector('english', d.title || ' ' || d.summary), plainto_tsquery('english', $1)) DESC
		LIMIT %d OFFSET %d`, base, limit, offset)

	rows, err := p.db.QueryContext(ctx, dataSQL, q.Text)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ReviewID, &r.DocumentID, &r.Version, &r.Title, &r.Snippet, &r.Reviewer); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, r)
	}
	return results, total, rows.Err()
}
