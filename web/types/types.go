package types

import (
	"bakai-assistant/category"
	"bakai-assistant/rag"
)

// QueryRequest carries one customer question.
type QueryRequest struct {
	Query string `json:"query" form:"query"`
}

// QueryResponse is what the content layer receives for a question. Answer is
// only set when DirectAnswer is true.
type QueryResponse struct {
	Query        string          `json:"query"`
	SearchType   rag.SearchType  `json:"search_type"`
	QueryType    rag.QueryType   `json:"query_type"`
	DirectAnswer bool            `json:"direct_answer"`
	Answer       string          `json:"answer,omitempty"`
	Matches      []rag.Match     `json:"matches"`
	Category     category.Result `json:"category"`
}

// CategorizeResponse is the full category breakdown for a query.
type CategorizeResponse struct {
	Query    string              `json:"query"`
	Result   category.Result     `json:"result"`
	Analysis []category.Analysis `json:"analysis"`
}

// ReindexRequest controls a reload of the knowledge collection.
type ReindexRequest struct {
	Neighbors bool `json:"neighbors" form:"neighbors"`
}

// ReindexResponse reports a finished reload.
type ReindexResponse struct {
	Stats            rag.IndexStats `json:"stats"`
	NeighborsIndexed int            `json:"neighbors_indexed"`
	NeighborError    string         `json:"neighbor_error,omitempty"`
}

// CategoriesResponse lists categories with their links.
type CategoriesResponse struct {
	Categories []category.Entry `json:"categories"`
	General    string           `json:"general_link"`
	LinkError  string           `json:"link_error,omitempty"`
}
