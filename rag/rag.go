package rag

import (
	"context"
	"fmt"
	"runtime"

	"bakai-assistant/config"
	apperrors "bakai-assistant/errors"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// ChromemNeighbors serves nearest-neighbor lookups from a chromem-go collection.
type ChromemNeighbors struct {
	db         *chromem.DB
	name       string
	embedder   chromem.EmbeddingFunc
	collection *chromem.Collection
	logger     *zap.Logger
}

// OpenChromemDB opens the persistent store at CHROMEM_PATH, or an in-memory
// store when the path is empty.
func OpenChromemDB(cfg *config.Config) (*chromem.DB, error) {
	if cfg.ChromemPath == "" {
		return chromem.NewDB(), nil
	}
	db, err := chromem.NewPersistentDB(cfg.ChromemPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem store at %s: %w", cfg.ChromemPath, err)
	}
	return db, nil
}

// NewChromemNeighbors binds to (or creates) the named collection.
func NewChromemNeighbors(db *chromem.DB, name string, embedder chromem.EmbeddingFunc, logger *zap.Logger) (*ChromemNeighbors, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	collection, err := db.GetOrCreateCollection(name, nil, embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return &ChromemNeighbors{
		db:         db,
		name:       name,
		embedder:   embedder,
		collection: collection,
		logger:     logger,
	}, nil
}

// Search returns up to topK documents closest to text. Distance is
// 1 - cosine similarity.
func (c *ChromemNeighbors) Search(ctx context.Context, text string, topK int) ([]Neighbor, error) {
	count := c.collection.Count()
	if count == 0 || topK <= 0 {
		return nil, nil
	}
	// chromem rejects nResults larger than the collection
	n := min(topK, count)

	results, err := c.collection.Query(ctx, text, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: chromem query: %v", apperrors.ErrNeighborServiceUnavailable, err)
	}

	neighbors := make([]Neighbor, 0, len(results))
	for _, res := range results {
		neighbors = append(neighbors, Neighbor{
			ID:       res.ID,
			Content:  res.Content,
			Metadata: cloneStringMap(res.Metadata),
			Distance: 1 - float64(res.Similarity),
		})
	}
	return neighbors, nil
}

// IndexEntries embeds entries in batches and upserts them by ID.
func (c *ChromemNeighbors) IndexEntries(ctx context.Context, entries []KnowledgeEntry, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 20
	}
	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range AssignEntryIDs(entries) {
		text := entryText(e)
		if text == "" {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:       e.ID,
			Content:  text,
			Metadata: cloneStringMap(e.Attributes),
		})
	}

	indexed := 0
	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		if err := c.collection.AddDocuments(ctx, docs[start:end], runtime.NumCPU()); err != nil {
			return indexed, fmt.Errorf("failed to add batch %d-%d: %w", start, end, err)
		}
		indexed = end
		c.logger.Info("Indexed knowledge batch",
			zap.String("collection", c.name),
			zap.Int("indexed", indexed),
			zap.Int("total", len(docs)))
	}
	return indexed, nil
}

// Reset drops every document from the collection. It must not run
// concurrently with Search.
func (c *ChromemNeighbors) Reset() error {
	if err := c.db.DeleteCollection(c.name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", c.name, err)
	}
	collection, err := c.db.GetOrCreateCollection(c.name, nil, c.embedder)
	if err != nil {
		return fmt.Errorf("failed to recreate collection %s: %w", c.name, err)
	}
	c.collection = collection
	return nil
}

// Count returns the number of stored documents.
func (c *ChromemNeighbors) Count() int {
	return c.collection.Count()
}
