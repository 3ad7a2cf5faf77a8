package rag

import "context"

// KnowledgeEntry is one unit of bank knowledge as supplied by a KnowledgeSource.
// StructuredQuestion/StructuredAnswer are set when the source already separates
// the pair; otherwise the pair is parsed out of RawText.
type KnowledgeEntry struct {
	ID                 string            `json:"id"`
	RawText            string            `json:"content"`
	StructuredQuestion string            `json:"question,omitempty"`
	StructuredAnswer   string            `json:"answer,omitempty"`
	Attributes         map[string]string `json:"metadata,omitempty"`
}

// FaqRecord is a question/answer pair extracted from a KnowledgeEntry.
type FaqRecord struct {
	NormalizedQuestion string         `json:"normalized_question"`
	OriginalQuestion   string         `json:"original_question"`
	Answer             string         `json:"answer"`
	Entry              KnowledgeEntry `json:"-"`
}

// MatchKind tags how a result was found.
type MatchKind string

const (
	MatchExact           MatchKind = "exact"
	MatchNearExact       MatchKind = "near_exact"
	MatchSimilar         MatchKind = "similar"
	MatchKeywordOverlap  MatchKind = "keyword_overlap"
	MatchNearestNeighbor MatchKind = "nearest_neighbor"
)

// SearchType summarizes a whole resolution for the content layer.
type SearchType string

const (
	SearchExactMatch   SearchType = "exact_match"
	SearchNoExactMatch SearchType = "no_exact_match"
	SearchNoMatch      SearchType = "no_match"
)

// Match is a single retrieved piece of knowledge. Score is always higher-is-better;
// nearest-neighbor matches also carry the raw backend distance.
type Match struct {
	Text     string            `json:"text"`
	Kind     MatchKind         `json:"match_kind"`
	Score    float64           `json:"score"`
	Distance float64           `json:"distance,omitempty"`
	Metadata map[string]string `json:"source_metadata,omitempty"`
	Record   *FaqRecord        `json:"faq,omitempty"`
}

// Resolution is the outcome of resolving one query.
type Resolution struct {
	Query      string     `json:"query"`
	SearchType SearchType `json:"search_type"`
	QueryType  QueryType  `json:"query_type"`
	Matches    []Match    `json:"matches"`
}

// DirectAnswer returns the stored answer for exact and near-exact resolutions.
func (r *Resolution) DirectAnswer() (string, bool) {
	if r == nil || r.SearchType != SearchExactMatch || len(r.Matches) == 0 || r.Matches[0].Record == nil {
		return "", false
	}
	return r.Matches[0].Record.Answer, true
}

// Neighbor is one candidate returned by a NeighborService.
type Neighbor struct {
	ID       string
	Content  string
	Metadata map[string]string
	Distance float64
}

// NeighborService is the nearest-neighbor backend. Smaller distances are closer.
type NeighborService interface {
	Search(ctx context.Context, text string, topK int) ([]Neighbor, error)
}

// NeighborIndexer loads knowledge into a neighbor backend, batchSize entries
// at a time, and reports how many were stored.
type NeighborIndexer interface {
	IndexEntries(ctx context.Context, entries []KnowledgeEntry, batchSize int) (int, error)
}

// KnowledgeSource supplies the ordered knowledge collection.
type KnowledgeSource interface {
	Load(ctx context.Context) ([]KnowledgeEntry, error)
}
