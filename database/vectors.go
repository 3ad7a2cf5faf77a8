package database

import (
	"context"
	"errors"
	"fmt"

	apperrors "bakai-assistant/errors"
	"bakai-assistant/rag"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// EmbedFunc turns text into an embedding vector.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// VectorNeighbors serves nearest-neighbor lookups from the pgvector table.
// Distance is pgvector's cosine distance.
type VectorNeighbors struct {
	store  *PostgresStore
	embed  EmbedFunc
	logger *zap.Logger
}

func NewVectorNeighbors(store *PostgresStore, embed EmbedFunc, logger *zap.Logger) (*VectorNeighbors, error) {
	if store == nil || embed == nil {
		return nil, errors.New("vector neighbors need a store and an embedding function")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VectorNeighbors{store: store, embed: embed, logger: logger}, nil
}

// Search returns up to topK stored documents closest to text.
func (v *VectorNeighbors) Search(ctx context.Context, text string, topK int) ([]rag.Neighbor, error) {
	if topK <= 0 {
		return nil, nil
	}
	vec, err := v.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", apperrors.ErrNeighborServiceUnavailable, err)
	}

	const query = `
		SELECT id, content, metadata, embedding <=> $1 AS distance
		FROM knowledge_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := v.store.DB.QueryContext(ctx, query, pgvector.NewVector(vec), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: vector query: %v", apperrors.ErrNeighborServiceUnavailable, err)
	}
	defer rows.Close()

	var neighbors []rag.Neighbor
	for rows.Next() {
		var n rag.Neighbor
		var meta []byte
		if err := rows.Scan(&n.ID, &n.Content, &meta, &n.Distance); err != nil {
			return nil, fmt.Errorf("%w: scan neighbor: %v", apperrors.ErrNeighborServiceUnavailable, err)
		}
		if n.Metadata, err = decodeMetadata(meta); err != nil {
			v.logger.Debug("Dropping unreadable neighbor metadata", zap.String("id", n.ID), zap.Error(err))
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrNeighborServiceUnavailable, err)
	}
	return neighbors, nil
}

// IndexEntries embeds entries batchSize at a time and upserts them by ID.
// Each batch commits on its own so a failure keeps earlier batches.
func (v *VectorNeighbors) IndexEntries(ctx context.Context, entries []rag.KnowledgeEntry, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 20
	}
	var prepared []rag.KnowledgeEntry
	for _, e := range rag.AssignEntryIDs(entries) {
		if e.Text() != "" {
			prepared = append(prepared, e)
		}
	}

	indexed := 0
	for start := 0; start < len(prepared); start += batchSize {
		end := min(start+batchSize, len(prepared))
		if err := v.indexBatch(ctx, prepared[start:end]); err != nil {
			return indexed, fmt.Errorf("failed to index batch %d-%d: %w", start, end, err)
		}
		indexed = end
		v.logger.Info("Indexed knowledge batch",
			zap.String("backend", "pgvector"),
			zap.Int("indexed", indexed),
			zap.Int("total", len(prepared)))
	}
	return indexed, nil
}

func (v *VectorNeighbors) indexBatch(ctx context.Context, batch []rag.KnowledgeEntry) error {
	const query = `
        INSERT INTO knowledge_embeddings (id, content, metadata, embedding, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (id)
        DO UPDATE SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding, updated_at = NOW()
    `

	vectors := make([]pgvector.Vector, len(batch))
	for i, e := range batch {
		vec, err := v.embed(ctx, e.Text())
		if err != nil {
			return fmt.Errorf("%w: entry %s: %v", apperrors.ErrEmbedding, e.ID, err)
		}
		vectors[i] = pgvector.NewVector(vec)
	}

	tx, err := v.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseOperation, err)
	}
	defer tx.Rollback()

	for i, e := range batch {
		meta, err := encodeMetadata(e.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for entry %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, e.ID, e.Text(), meta, vectors[i]); err != nil {
			return fmt.Errorf("%w: failed to upsert embedding %s: %v", apperrors.ErrDatabaseOperation, e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseOperation, err)
	}
	return nil
}

// Count returns the number of stored embeddings.
func (v *VectorNeighbors) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.store.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrDatabaseOperation, err)
	}
	return n, nil
}
