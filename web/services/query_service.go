package services

import (
	"context"
	"strings"
	"time"

	"bakai-assistant/category"
	"bakai-assistant/database"
	apperrors "bakai-assistant/errors"
	"bakai-assistant/rag"
	"bakai-assistant/web/types"

	"go.uber.org/zap"
)

const queryLogTimeout = 2 * time.Second

// Resolver answers queries against the knowledge index.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*rag.Resolution, error)
}

// QueryLogger records resolved queries. It is optional.
type QueryLogger interface {
	LogQuery(ctx context.Context, entry database.QueryLogEntry) error
}

// QueryService resolves a question and picks the outbound link for it.
type QueryService struct {
	resolver   Resolver
	classifier *category.Classifier
	queryLog   QueryLogger
	logger     *zap.Logger
}

func NewQueryService(resolver Resolver, classifier *category.Classifier, queryLog QueryLogger, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		resolver:   resolver,
		classifier: classifier,
		queryLog:   queryLog,
		logger:     logger,
	}
}

// Answer resolves query. Only a missing index is reported as an error.
func (s *QueryService) Answer(ctx context.Context, query string) (*types.QueryResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "query cannot be empty")
	}

	res, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	docs := make([]map[string]string, 0, len(res.Matches))
	for _, m := range res.Matches {
		if m.Metadata != nil {
			docs = append(docs, m.Metadata)
		}
	}
	routed := s.classifier.Route(query, docs)

	resp := &types.QueryResponse{
		Query:      res.Query,
		SearchType: res.SearchType,
		QueryType:  res.QueryType,
		Matches:    res.Matches,
		Category:   routed,
	}
	if resp.Matches == nil {
		resp.Matches = []rag.Match{}
	}
	if answer, ok := res.DirectAnswer(); ok {
		resp.DirectAnswer = true
		resp.Answer = answer
	}

	s.logger.Info("Resolved query",
		zap.String("search_type", string(res.SearchType)),
		zap.String("category", string(routed.Category)),
		zap.Int("matches", len(res.Matches)))
	s.record(ctx, resp)
	return resp, nil
}

// Categorize returns the routed category and the full per-category analysis.
func (s *QueryService) Categorize(query string) (*types.CategorizeResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "query cannot be empty")
	}
	return &types.CategorizeResponse{
		Query:    query,
		Result:   s.classifier.Route(query, nil),
		Analysis: s.classifier.Analyze(query),
	}, nil
}

// record writes the query log entry. Failures are logged and dropped.
func (s *QueryService) record(ctx context.Context, resp *types.QueryResponse) {
	if s.queryLog == nil {
		return
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queryLogTimeout)
	defer cancel()

	entry := database.QueryLogEntry{
		Query:           resp.Query,
		SearchType:      string(resp.SearchType),
		QueryType:       string(resp.QueryType),
		Category:        string(resp.Category.Category),
		MatchedPatterns: resp.Category.MatchedPatterns,
		MatchCount:      len(resp.Matches),
		Link:            resp.Category.URL,
	}
	if err := s.queryLog.LogQuery(logCtx, entry); err != nil {
		s.logger.Warn("Failed to record query", zap.Error(err))
	}
}
