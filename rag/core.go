package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"bakai-assistant/config"
	apperrors "bakai-assistant/errors"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// entryNamespace seeds deterministic entry IDs so the same text always maps to
// the same neighbor-store document.
var entryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bakai.kg/assistant/knowledge"))

// Retriever resolves customer queries against the current knowledge index.
// The index is published atomically; readers never lock.
type Retriever struct {
	cfg        *config.Config
	neighbors  NeighborService
	logger     *zap.Logger
	index      atomic.Pointer[Index]
	generation atomic.Uint64
	reindexMu  sync.Mutex
	cache      *lru.Cache
}

// New creates a Retriever. neighbors may be nil, in which case the
// nearest-neighbor stage is skipped.
func New(cfg *config.Config, neighbors NeighborService, logger *zap.Logger) (*Retriever, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required: %w", apperrors.ErrInvalidInput)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Retriever{
		cfg:       cfg,
		neighbors: neighbors,
		logger:    logger,
	}
	if cfg.ResolutionCacheSize > 0 {
		cache, err := lru.New(cfg.ResolutionCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create resolution cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Reindex builds a fresh index from entries and publishes it. In-flight
// queries keep using the previous index until they finish.
func (r *Retriever) Reindex(ctx context.Context, entries []KnowledgeEntry) (IndexStats, error) {
	if err := ctx.Err(); err != nil {
		return IndexStats{}, err
	}

	r.reindexMu.Lock()
	defer r.reindexMu.Unlock()

	idx, err := BuildIndex(AssignEntryIDs(entries), r.logger)
	if err != nil {
		return IndexStats{}, apperrors.WrapError(err, "failed to build knowledge index")
	}
	idx.generation = r.generation.Add(1)
	r.index.Store(idx)
	if r.cache != nil {
		r.cache.Purge()
	}
	indexedEntries.Set(float64(len(idx.entries)))
	indexedFaqs.Set(float64(len(idx.records)))
	return idx.Stats(), nil
}

// LoadFrom reads the collection from source and reindexes.
func (r *Retriever) LoadFrom(ctx context.Context, source KnowledgeSource) (IndexStats, error) {
	entries, err := source.Load(ctx)
	if err != nil {
		return IndexStats{}, apperrors.WrapError(err, "failed to load knowledge collection")
	}
	return r.Reindex(ctx, entries)
}

// Index returns the published index.
func (r *Retriever) Index() (*Index, error) {
	idx := r.index.Load()
	if idx == nil {
		return nil, apperrors.ErrIndexNotBuilt
	}
	return idx, nil
}

// Stats reports the published index counters; Ready is false before the
// first successful build.
func (r *Retriever) Stats() IndexStats {
	idx := r.index.Load()
	if idx == nil {
		return IndexStats{}
	}
	return idx.Stats()
}

func (r *Retriever) fallbackOptions() FallbackOptions {
	return FallbackOptions{
		K:                   r.cfg.SearchK,
		SimilarThreshold:    r.cfg.SimilarFAQThreshold,
		MaxVariants:         r.cfg.MaxQueryVariants,
		NeighborTimeout:     r.cfg.NeighborTimeout,
		NeighborConcurrency: r.cfg.NeighborConcurrency,
	}
}

// AssignEntryIDs fills missing IDs with a UUID derived from the entry text.
func AssignEntryIDs(entries []KnowledgeEntry) []KnowledgeEntry {
	out := make([]KnowledgeEntry, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			e.ID = EntryID(entryText(e))
		}
		out[i] = e
	}
	return out
}

// EntryID returns the deterministic ID used for an entry's text.
func EntryID(text string) string {
	return uuid.NewSHA1(entryNamespace, []byte(hashContent(text))).String()
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}

// Text returns what the entry is matched, embedded and returned by.
func (e KnowledgeEntry) Text() string {
	return entryText(e)
}

// entryText renders entries that only carry structured fields in the FAQ
// layout.
func entryText(e KnowledgeEntry) string {
	if strings.TrimSpace(e.RawText) != "" {
		return e.RawText
	}
	if e.StructuredQuestion == "" && e.StructuredAnswer == "" {
		return ""
	}
	q := strings.TrimSuffix(strings.TrimSpace(e.StructuredQuestion), "?")
	return fmt.Sprintf("FAQ: %s?\nОтвет: %s", q, strings.TrimSpace(e.StructuredAnswer))
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
