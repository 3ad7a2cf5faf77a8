package database

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "bakai-assistant/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type PostgresStore struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", apperrors.ErrDatabaseOperation, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", apperrors.ErrDatabaseOperation, err)
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{DB: db, logger: logger}, nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}

// EnsureSchema creates the required tables if they do not already exist.
// dimensions fixes the embedding column width; zero leaves it unconstrained.
func (s *PostgresStore) EnsureSchema(ctx context.Context, dimensions int) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS knowledge_entries (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            content TEXT NOT NULL DEFAULT '',
            question TEXT NOT NULL DEFAULT '',
            answer TEXT NOT NULL DEFAULT '',
            metadata JSONB DEFAULT '{}'::jsonb,
            content_hash TEXT,
            updated_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_entries_position ON knowledge_entries(position)`,
		`CREATE TABLE IF NOT EXISTS query_log (
            id UUID PRIMARY KEY,
            query TEXT NOT NULL,
            search_type TEXT NOT NULL,
            query_type TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            matched_patterns TEXT[] DEFAULT '{}'::TEXT[],
            match_count INTEGER NOT NULL DEFAULT 0,
            link TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_query_log_created_at ON query_log(created_at DESC)`,
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS knowledge_embeddings (
            id TEXT PRIMARY KEY,
            content TEXT NOT NULL,
            metadata JSONB DEFAULT '{}'::jsonb,
            embedding %s NOT NULL,
            updated_at TIMESTAMPTZ DEFAULT NOW()
        )`, vectorColumnType(dimensions)),
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: failed to execute schema statement: %v", apperrors.ErrDatabaseOperation, err)
		}
	}
	return nil
}

func vectorColumnType(dimensions int) string {
	if dimensions <= 0 {
		return "vector"
	}
	return fmt.Sprintf("vector(%d)", dimensions)
}
