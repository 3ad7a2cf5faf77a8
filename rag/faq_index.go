package rag

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "bakai-assistant/errors"

	"go.uber.org/zap"
)

// faqLayout describes one question/answer markup found in knowledge text.
type faqLayout struct {
	name    string
	marker  *regexp.Regexp
	pattern *regexp.Regexp
}

var faqLayouts = []faqLayout{
	{
		name:    "faq",
		marker:  regexp.MustCompile(`FAQ:`),
		pattern: regexp.MustCompile(`(?s)FAQ:\s*(.+?)\?\s*\n?Ответ:\s*(.+)`),
	},
	{
		name:    "vopros",
		marker:  regexp.MustCompile(`Вопрос:`),
		pattern: regexp.MustCompile(`(?s)Вопрос:\s*(.+?)\?\s*\n?Ответ:\s*(.+)`),
	},
	{
		name:    "qa",
		marker:  regexp.MustCompile(`(?m)^\s*Q:`),
		pattern: regexp.MustCompile(`(?s)Q:\s*(.+?)\?\s*\n?A:\s*(.+)`),
	},
}

// Index is an immutable snapshot of the knowledge collection. It is built once
// per load and replaced wholesale on reindex.
type Index struct {
	generation uint64
	builtAt    time.Time
	entries    []KnowledgeEntry
	lowered    []string
	records    []*FaqRecord
	byQuestion map[string]*FaqRecord
	malformed  int
	collisions int
}

// IndexStats describes a built index.
type IndexStats struct {
	Generation   uint64    `json:"generation"`
	TotalEntries int       `json:"total_documents"`
	FaqCount     int       `json:"faq_count"`
	Malformed    int       `json:"malformed_entries"`
	Collisions   int       `json:"collisions"`
	BuiltAt      time.Time `json:"built_at"`
	Ready        bool      `json:"database_ready"`
}

// BuildIndex extracts every question/answer pair from entries. Entries carrying
// a marker that does not parse are skipped and logged; unstructured entries stay
// available for keyword and neighbor retrieval. When two entries normalize to
// the same question the first one is kept.
func BuildIndex(entries []KnowledgeEntry, logger *zap.Logger) (*Index, error) {
	if len(entries) == 0 {
		return nil, apperrors.ErrEmptyCollection
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := &Index{
		builtAt:    time.Now(),
		entries:    make([]KnowledgeEntry, len(entries)),
		lowered:    make([]string, len(entries)),
		byQuestion: make(map[string]*FaqRecord),
	}
	copy(idx.entries, entries)

	for i, entry := range idx.entries {
		idx.lowered[i] = strings.ToLower(entryText(entry))

		question, answer, err := extractFaq(entry)
		if err != nil {
			idx.malformed++
			logger.Warn("Skipping malformed knowledge entry",
				zap.String("entry_id", entry.ID),
				zap.Int("position", i),
				zap.Error(err))
			continue
		}
		if question == "" {
			continue
		}

		normalized := Normalize(question)
		if normalized == "" {
			idx.malformed++
			logger.Warn("Skipping knowledge entry with empty question",
				zap.String("entry_id", entry.ID),
				zap.Int("position", i))
			continue
		}

		if existing, ok := idx.byQuestion[normalized]; ok {
			idx.collisions++
			logger.Warn("Duplicate FAQ question, keeping first entry",
				zap.String("question", normalized),
				zap.String("kept_entry", existing.Entry.ID),
				zap.String("dropped_entry", entry.ID))
			continue
		}

		record := &FaqRecord{
			NormalizedQuestion: normalized,
			OriginalQuestion:   question,
			Answer:             answer,
			Entry:              entry,
		}
		idx.byQuestion[normalized] = record
		idx.records = append(idx.records, record)
	}

	logger.Info("Knowledge index built",
		zap.Int("entries", len(idx.entries)),
		zap.Int("faq_records", len(idx.records)),
		zap.Int("malformed", idx.malformed),
		zap.Int("collisions", idx.collisions))

	return idx, nil
}

// extractFaq returns the question (with its question mark) and answer of an
// entry. Both are empty when the entry has no question/answer structure.
func extractFaq(entry KnowledgeEntry) (string, string, error) {
	q := strings.TrimSpace(entry.StructuredQuestion)
	a := strings.TrimSpace(entry.StructuredAnswer)
	if q != "" || a != "" {
		if q == "" || a == "" {
			return "", "", fmt.Errorf("%w: structured entry is missing question or answer", apperrors.ErrMalformedEntry)
		}
		return collapseWhitespace(q), a, nil
	}

	for _, layout := range faqLayouts {
		if !layout.marker.MatchString(entry.RawText) {
			continue
		}
		m := layout.pattern.FindStringSubmatch(entry.RawText)
		if m == nil {
			return "", "", fmt.Errorf("%w: %s marker present but question/answer not found", apperrors.ErrMalformedEntry, layout.name)
		}
		question := collapseWhitespace(m[1])
		answer := strings.TrimSpace(m[2])
		if question == "" || answer == "" {
			return "", "", fmt.Errorf("%w: %s marker with empty question or answer", apperrors.ErrMalformedEntry, layout.name)
		}
		return question + "?", answer, nil
	}
	return "", "", nil
}

// Lookup returns the record stored under a normalized question.
func (idx *Index) Lookup(normalized string) (*FaqRecord, bool) {
	rec, ok := idx.byQuestion[normalized]
	return rec, ok
}

// Records returns FAQ records in insertion order.
func (idx *Index) Records() []*FaqRecord {
	return idx.records
}

// Entries returns every knowledge entry in load order.
func (idx *Index) Entries() []KnowledgeEntry {
	return idx.entries
}

// Stats reports index counters.
func (idx *Index) Stats() IndexStats {
	return IndexStats{
		Generation:   idx.generation,
		TotalEntries: len(idx.entries),
		FaqCount:     len(idx.records),
		Malformed:    idx.malformed,
		Collisions:   idx.collisions,
		BuiltAt:      idx.builtAt,
		Ready:        true,
	}
}
