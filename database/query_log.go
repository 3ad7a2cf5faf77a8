package database

import (
	"context"
	"fmt"
	"time"

	apperrors "bakai-assistant/errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// QueryLogEntry records how one customer query was resolved.
type QueryLogEntry struct {
	ID              uuid.UUID `json:"id"`
	Query           string    `json:"query"`
	SearchType      string    `json:"search_type"`
	QueryType       string    `json:"query_type"`
	Category        string    `json:"category"`
	MatchedPatterns []string  `json:"matched_patterns"`
	MatchCount      int       `json:"match_count"`
	Link            string    `json:"link"`
	CreatedAt       time.Time `json:"created_at"`
}

// LogQuery appends entry to the query log.
func (s *PostgresStore) LogQuery(ctx context.Context, entry QueryLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	patterns := entry.MatchedPatterns
	if patterns == nil {
		patterns = []string{}
	}

	const query = `
		INSERT INTO query_log (id, query, search_type, query_type, category, matched_patterns, match_count, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.DB.ExecContext(ctx, query, entry.ID, entry.Query, entry.SearchType, entry.QueryType,
		entry.Category, pq.Array(patterns), entry.MatchCount, entry.Link, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to log query: %v", apperrors.ErrDatabaseOperation, err)
	}
	return nil
}

// RecentQueries returns up to limit log entries, newest first.
func (s *PostgresStore) RecentQueries(ctx context.Context, limit int) ([]QueryLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, query, search_type, query_type, category, matched_patterns, match_count, link, created_at
		FROM query_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query log: %v", apperrors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var entries []QueryLogEntry
	for rows.Next() {
		var e QueryLogEntry
		var patterns pq.StringArray
		if err := rows.Scan(&e.ID, &e.Query, &e.SearchType, &e.QueryType, &e.Category, &patterns, &e.MatchCount, &e.Link, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan log entry: %v", apperrors.ErrDatabaseOperation, err)
		}
		e.MatchedPatterns = []string(patterns)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseOperation, err)
	}
	return entries, nil
}
