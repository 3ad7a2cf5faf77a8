package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bakai-assistant/rag"
	"bakai-assistant/web/types"

	"go.uber.org/zap"
)

// Reindexer publishes a fresh index built from entries.
type Reindexer interface {
	Reindex(ctx context.Context, entries []rag.KnowledgeEntry) (rag.IndexStats, error)
}

// ReindexService reloads the knowledge collection into the live index and,
// on request, into the neighbor backend.
type ReindexService struct {
	index     Reindexer
	source    rag.KnowledgeSource
	indexer   rag.NeighborIndexer
	batchSize int
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewReindexService creates a ReindexService. indexer may be nil when no
// neighbor backend is configured.
func NewReindexService(index Reindexer, source rag.KnowledgeSource, indexer rag.NeighborIndexer, batchSize int, logger *zap.Logger) *ReindexService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReindexService{
		index:     index,
		source:    source,
		indexer:   indexer,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Reindex loads the collection and publishes it. A neighbor indexing failure
// is reported in the response; the lexical index stays published.
func (rs *ReindexService) Reindex(ctx context.Context, neighbors bool) (*types.ReindexResponse, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	start := time.Now()
	rs.logger.Info("Starting knowledge reindex", zap.Bool("neighbors", neighbors))

	entries, err := rs.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge collection: %w", err)
	}

	stats, err := rs.index.Reindex(ctx, entries)
	if err != nil {
		return nil, err
	}
	resp := &types.ReindexResponse{Stats: stats}

	if neighbors && rs.indexer != nil {
		indexed, err := rs.indexer.IndexEntries(ctx, entries, rs.batchSize)
		resp.NeighborsIndexed = indexed
		if err != nil {
			rs.logger.Error("Neighbor indexing failed",
				zap.Error(err),
				zap.Int("indexed", indexed),
				zap.Int("total", len(entries)))
			resp.NeighborError = err.Error()
		}
	}

	rs.logger.Info("Knowledge reindex completed",
		zap.Uint64("generation", stats.Generation),
		zap.Int("entries", stats.TotalEntries),
		zap.Int("faqs", stats.FaqCount),
		zap.Int("neighbors_indexed", resp.NeighborsIndexed),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}
