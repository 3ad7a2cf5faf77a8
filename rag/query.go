package rag

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// QueryType hints the content layer at the kind of answer the customer wants.
type QueryType string

const (
	QueryInstruction QueryType = "instruction"
	QueryAddress     QueryType = "address"
	QueryDocuments   QueryType = "documents"
	QueryLimits      QueryType = "limits"
	QueryExplanation QueryType = "explanation"
	QueryGeneral     QueryType = "general"
)

var queryTypeHints = []struct {
	kind  QueryType
	words []string
}{
	{QueryInstruction, []string{"как", "каким образом", "способ", "процедура"}},
	{QueryAddress, []string{"где", "адрес", "находится"}},
	{QueryDocuments, []string{"документы", "требуются", "нужны"}},
	{QueryLimits, []string{"лимит", "ограничение", "максимум"}},
	{QueryExplanation, []string{"что такое", "расскажи"}},
}

// AnalyzeQueryType returns the first matching hint in declaration order.
func AnalyzeQueryType(query string) QueryType {
	lower := Normalize(query)
	for _, hint := range queryTypeHints {
		for _, w := range hint.words {
			if containsPhrase(lower, w) {
				return hint.kind
			}
		}
	}
	return QueryGeneral
}

// Resolve answers a query: an exact or near-exact FAQ hit is returned alone,
// otherwise fallback retrieval runs. An empty result is reported as
// SearchNoMatch, not as an error. The only error is ErrIndexNotBuilt.
func (r *Retriever) Resolve(ctx context.Context, query string) (*Resolution, error) {
	start := time.Now()
	defer func() { resolveLatency.Observe(time.Since(start).Seconds()) }()

	idx, err := r.Index()
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		Query:     query,
		QueryType: AnalyzeQueryType(query),
	}
	if strings.TrimSpace(query) == "" {
		res.SearchType = SearchNoMatch
		resolutionsTotal.WithLabelValues(string(res.SearchType)).Inc()
		return res, nil
	}

	cacheKey := strconv.FormatUint(idx.generation, 10) + "|" + query
	if r.cache != nil {
		if cached, ok := r.cache.Get(cacheKey); ok {
			hit := cached.(Match)
			res.SearchType = SearchExactMatch
			res.Matches = []Match{hit}
			resolutionsTotal.WithLabelValues(string(res.SearchType)).Inc()
			return res, nil
		}
	}

	if m, ok := idx.MatchExact(query, r.cfg.NearExactThreshold); ok {
		r.logger.Debug("FAQ match",
			zap.String("kind", string(m.Kind)),
			zap.Float64("score", m.Score),
			zap.String("question", m.Record.OriginalQuestion))
		if r.cache != nil {
			r.cache.Add(cacheKey, m)
		}
		res.SearchType = SearchExactMatch
		res.Matches = []Match{m}
		resolutionsTotal.WithLabelValues(string(res.SearchType)).Inc()
		return res, nil
	}

	res.Matches = RetrieveFallback(ctx, query, idx, r.neighbors, r.fallbackOptions(), r.logger)
	if len(res.Matches) == 0 {
		res.SearchType = SearchNoMatch
	} else {
		res.SearchType = SearchNoExactMatch
	}
	resolutionsTotal.WithLabelValues(string(res.SearchType)).Inc()
	return res, nil
}
