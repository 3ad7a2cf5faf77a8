package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	apperrors "bakai-assistant/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FallbackOptions tunes RetrieveFallback.
type FallbackOptions struct {
	K                   int
	SimilarThreshold    float64
	MaxVariants         int
	NeighborTimeout     time.Duration
	NeighborConcurrency int
}

const (
	defaultSearchK          = 5
	defaultSimilarThreshold = 0.6
)

func (o FallbackOptions) withDefaults() FallbackOptions {
	if o.K <= 0 {
		o.K = defaultSearchK
	}
	if o.SimilarThreshold <= 0 || o.SimilarThreshold > 1 {
		o.SimilarThreshold = defaultSimilarThreshold
	}
	if o.MaxVariants <= 0 {
		o.MaxVariants = DefaultMaxVariants
	}
	if o.NeighborConcurrency <= 0 {
		o.NeighborConcurrency = 1
	}
	return o
}

// RetrieveFallback gathers up to K documents for a query that has no exact FAQ
// answer. Keyword overlap is tried first and, when it finds anything, is
// returned alone. Otherwise similar FAQ questions are followed by nearest
// neighbors of every query variant. Results are deduplicated by text.
// A failing or slow neighbor service only removes its candidates.
func RetrieveFallback(ctx context.Context, query string, idx *Index, neighbors NeighborService, opts FallbackOptions, logger *zap.Logger) []Match {
	if idx == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	keywordMatches := idx.keywordSearch(query)
	if len(keywordMatches) > 0 {
		stageHits.WithLabelValues(string(MatchKeywordOverlap)).Inc()
		logger.Debug("Keyword overlap resolved query", zap.Int("candidates", len(keywordMatches)))
		return dedupeByText(keywordMatches, opts.K)
	}

	similar := idx.similarRecords(query, opts.SimilarThreshold)
	if len(similar) > 0 {
		stageHits.WithLabelValues(string(MatchSimilar)).Inc()
	}

	var nearest []Match
	if neighbors != nil {
		nearest = searchNeighbors(ctx, query, neighbors, opts, logger)
		if len(nearest) > 0 {
			stageHits.WithLabelValues(string(MatchNearestNeighbor)).Inc()
		}
	}

	logger.Debug("Fallback retrieval finished",
		zap.Int("similar_faq", len(similar)),
		zap.Int("nearest_neighbors", len(nearest)))

	combined := make([]Match, 0, len(similar)+len(nearest))
	combined = append(combined, similar...)
	combined = append(combined, nearest...)
	return dedupeByText(combined, opts.K)
}

// keywordSearch ranks raw entries by how many query keywords they contain.
func (idx *Index) keywordSearch(query string) []Match {
	keywords := ExtractKeywords(query)
	if len(keywords) == 0 {
		return nil
	}
	var matches []Match
	for i, entry := range idx.entries {
		overlap := keywordOverlap(keywords, idx.lowered[i])
		if overlap == 0 {
			continue
		}
		matches = append(matches, Match{
			Text:     entryText(entry),
			Kind:     MatchKeywordOverlap,
			Score:    float64(overlap),
			Metadata: cloneStringMap(entry.Attributes),
		})
	}
	sortByScoreDesc(matches)
	return matches
}

// searchNeighbors queries every variant with 2K candidates and keeps the
// closest occurrence of each document.
func searchNeighbors(ctx context.Context, query string, neighbors NeighborService, opts FallbackOptions, logger *zap.Logger) []Match {
	variants := GenerateVariants(query, opts.MaxVariants)
	perVariant := make([][]Neighbor, len(variants))
	topK := opts.K * 2

	var g errgroup.Group
	g.SetLimit(opts.NeighborConcurrency)
	for i, variant := range variants {
		i, variant := i, variant
		g.Go(func() error {
			callCtx := ctx
			if opts.NeighborTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, opts.NeighborTimeout)
				defer cancel()
			}
			results, err := searchWithDeadline(callCtx, neighbors, variant, topK)
			if err != nil {
				neighborFailures.Inc()
				if !errors.Is(err, apperrors.ErrNeighborServiceUnavailable) {
					err = fmt.Errorf("%w: %v", apperrors.ErrNeighborServiceUnavailable, err)
				}
				logger.Warn("Neighbor search failed, continuing without candidates",
					zap.String("variant", variant),
					zap.Error(err))
				return nil
			}
			perVariant[i] = results
			return nil
		})
	}
	_ = g.Wait()

	best := make(map[string]Neighbor)
	var order []string
	for _, results := range perVariant {
		for _, n := range results {
			if n.Content == "" {
				continue
			}
			existing, ok := best[n.Content]
			if !ok {
				order = append(order, n.Content)
				best[n.Content] = n
				continue
			}
			if n.Distance < existing.Distance {
				best[n.Content] = n
			}
		}
	}

	matches := make([]Match, 0, len(order))
	for _, content := range order {
		n := best[content]
		matches = append(matches, Match{
			Text:     n.Content,
			Kind:     MatchNearestNeighbor,
			Score:    1 / (1 + n.Distance),
			Distance: n.Distance,
			Metadata: cloneStringMap(n.Metadata),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}

// searchWithDeadline returns as soon as ctx is done even if the backend
// ignores cancellation.
func searchWithDeadline(ctx context.Context, neighbors NeighborService, text string, topK int) ([]Neighbor, error) {
	type searchResult struct {
		neighbors []Neighbor
		err       error
	}
	done := make(chan searchResult, 1)
	go func() {
		n, err := neighbors.Search(ctx, text, topK)
		done <- searchResult{neighbors: n, err: err}
	}()
	select {
	case res := <-done:
		return res.neighbors, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dedupeByText keeps the first occurrence of each text and truncates to k.
func dedupeByText(matches []Match, k int) []Match {
	seen := make(map[string]struct{}, len(matches))
	out := make([]Match, 0, min(len(matches), k))
	for _, m := range matches {
		if _, dup := seen[m.Text]; dup {
			continue
		}
		seen[m.Text] = struct{}{}
		out = append(out, m)
		if len(out) == k {
			break
		}
	}
	return out
}

func sortByScoreDesc(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}
