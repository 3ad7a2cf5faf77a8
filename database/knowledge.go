package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "bakai-assistant/errors"
	"bakai-assistant/rag"

	"go.uber.org/zap"
)

// Load returns the stored knowledge collection in insertion order. It makes
// PostgresStore a rag.KnowledgeSource.
func (s *PostgresStore) Load(ctx context.Context) ([]rag.KnowledgeEntry, error) {
	const query = `
		SELECT id, content, question, answer, metadata
		FROM knowledge_entries
		ORDER BY position ASC, id ASC
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query knowledge entries: %v", apperrors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var entries []rag.KnowledgeEntry
	for rows.Next() {
		var e rag.KnowledgeEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.RawText, &e.StructuredQuestion, &e.StructuredAnswer, &meta); err != nil {
			return nil, fmt.Errorf("%w: failed to scan knowledge entry: %v", apperrors.ErrDatabaseOperation, err)
		}
		e.Attributes, err = decodeMetadata(meta)
		if err != nil {
			s.logger.Warn("Ignoring unreadable entry metadata", zap.String("id", e.ID), zap.Error(err))
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseOperation, err)
	}
	return entries, nil
}

// UpsertEntries stores entries, replacing any with the same ID. Entries
// without an ID get one derived from their text.
func (s *PostgresStore) UpsertEntries(ctx context.Context, entries []rag.KnowledgeEntry) (int, error) {
	const query = `
        INSERT INTO knowledge_entries (id, position, content, question, answer, metadata, content_hash, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT (id)
        DO UPDATE SET position = EXCLUDED.position, content = EXCLUDED.content, question = EXCLUDED.question,
            answer = EXCLUDED.answer, metadata = EXCLUDED.metadata, content_hash = EXCLUDED.content_hash, updated_at = NOW()
    `

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrDatabaseOperation, err)
	}
	defer tx.Rollback()

	stored := 0
	for i, e := range rag.AssignEntryIDs(entries) {
		text := e.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		meta, err := encodeMetadata(e.Attributes)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal metadata for entry %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, e.ID, i, e.RawText, e.StructuredQuestion, e.StructuredAnswer, meta, contentHash(text)); err != nil {
			return 0, fmt.Errorf("%w: failed to upsert entry %s: %v", apperrors.ErrDatabaseOperation, e.ID, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrDatabaseOperation, err)
	}
	s.logger.Info("Stored knowledge entries", zap.Int("count", stored))
	return stored, nil
}

func encodeMetadata(meta map[string]string) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeMetadata reads a JSONB object back into flat attributes. Nested
// values are kept as compact JSON text.
func decodeMetadata(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if len(obj) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(obj))
	for k, v := range obj {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			meta[k] = s
			continue
		}
		if string(v) == "null" {
			meta[k] = ""
			continue
		}
		meta[k] = string(v)
	}
	return meta, nil
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}
