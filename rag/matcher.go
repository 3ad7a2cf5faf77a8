package rag

import "strings"

// DefaultNearExactThreshold is the similarity a query must exceed to be treated
// as a rewording of a stored question.
const DefaultNearExactThreshold = 0.95

// MatchExact looks the query up among FAQ questions. A case-insensitive
// identity anywhere in the index wins over any near-exact candidate; otherwise
// the record with the highest similarity above threshold is returned, the
// earliest record winning ties. It never touches the neighbor service.
func (idx *Index) MatchExact(query string, threshold float64) (Match, bool) {
	if idx == nil || len(idx.records) == 0 {
		return Match{}, false
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultNearExactThreshold
	}

	cleaned := strings.ToLower(CleanQuery(query))
	if cleaned == "" {
		return Match{}, false
	}

	for _, rec := range idx.records {
		if strings.ToLower(rec.OriginalQuestion) == cleaned {
			return recordMatch(rec, MatchExact, 1), true
		}
	}

	var best *FaqRecord
	bestScore := 0.0
	for _, rec := range idx.records {
		score := Similarity(cleaned, strings.ToLower(rec.OriginalQuestion))
		if score > threshold && score > bestScore {
			best = rec
			bestScore = score
		}
	}
	if best == nil {
		return Match{}, false
	}
	return recordMatch(best, MatchNearExact, bestScore), true
}

// similarRecords returns FAQ records whose normalized question is at least
// threshold-similar to the normalized query, best first.
func (idx *Index) similarRecords(query string, threshold float64) []Match {
	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}
	var matches []Match
	for _, rec := range idx.records {
		score := Similarity(normalized, rec.NormalizedQuestion)
		if score >= threshold {
			matches = append(matches, recordMatch(rec, MatchSimilar, score))
		}
	}
	sortByScoreDesc(matches)
	return matches
}

func recordMatch(rec *FaqRecord, kind MatchKind, score float64) Match {
	return Match{
		Text:     entryText(rec.Entry),
		Kind:     kind,
		Score:    score,
		Metadata: cloneStringMap(rec.Entry.Attributes),
		Record:   rec,
	}
}
