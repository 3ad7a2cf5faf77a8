package rag

import (
	"testing"

	apperrors "bakai-assistant/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildIndexExtractsFaqPairs(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	idx, err := BuildIndex(sampleEntries(), logger)
	require.NoError(t, err)

	stats := idx.Stats()
	assert.Equal(t, 5, stats.TotalEntries)
	assert.Equal(t, 3, stats.FaqCount)
	assert.Equal(t, 0, stats.Malformed)
	assert.True(t, stats.Ready)

	rec, ok := idx.Lookup("как открыть карту")
	require.True(t, ok)
	assert.Equal(t, "Как открыть карту?", rec.OriginalQuestion)
	assert.Equal(t, "Обратитесь в любой филиал с паспортом.", rec.Answer)
	assert.Equal(t, "faq-card", rec.Entry.ID)

	questions := make([]string, 0, len(idx.Records()))
	for _, r := range idx.Records() {
		questions = append(questions, r.NormalizedQuestion)
	}
	assert.Equal(t, []string{"как открыть карту", "что такое swift перевод", "где вы"}, questions)
}

func TestBuildIndexLayouts(t *testing.T) {
	tests := []struct {
		name         string
		entry        KnowledgeEntry
		wantQuestion string
		wantAnswer   string
	}{
		{
			name:         "faq_single_line",
			entry:        KnowledgeEntry{RawText: "FAQ: Есть ли кешбэк? Ответ: Да, до 5%."},
			wantQuestion: "Есть ли кешбэк?",
			wantAnswer:   "Да, до 5%.",
		},
		{
			name:         "vopros_otvet",
			entry:        KnowledgeEntry{RawText: "Вопрос: Какие документы нужны?\nОтвет: Паспорт."},
			wantQuestion: "Какие документы нужны?",
			wantAnswer:   "Паспорт.",
		},
		{
			name:         "q_a",
			entry:        KnowledgeEntry{RawText: "Q: What is SWIFT?\nA: An international transfer."},
			wantQuestion: "What is SWIFT?",
			wantAnswer:   "An international transfer.",
		},
		{
			name:         "structured_fields",
			entry:        KnowledgeEntry{StructuredQuestion: "Где  ближайший банкомат?", StructuredAnswer: " На ул. Тыныстанова. "},
			wantQuestion: "Где ближайший банкомат?",
			wantAnswer:   "На ул. Тыныстанова.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := BuildIndex([]KnowledgeEntry{tt.entry}, zap.NewNop())
			require.NoError(t, err)
			require.Len(t, idx.Records(), 1)
			assert.Equal(t, tt.wantQuestion, idx.Records()[0].OriginalQuestion)
			assert.Equal(t, tt.wantAnswer, idx.Records()[0].Answer)
		})
	}
}

func TestBuildIndexSkipsMalformedEntries(t *testing.T) {
	entries := []KnowledgeEntry{
		{ID: "broken", RawText: "FAQ: вопрос без ответа"},
		{ID: "half", StructuredQuestion: "Только вопрос?"},
		{ID: "ok", RawText: "FAQ: Есть ли кешбэк?\nОтвет: Да."},
	}
	idx, err := BuildIndex(entries, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Stats().Malformed)
	assert.Len(t, idx.Records(), 1)
	// Malformed entries remain searchable as raw text.
	assert.Len(t, idx.Entries(), 3)

	_, _, err = extractFaq(entries[0])
	assert.True(t, apperrors.IsMalformedEntry(err))
}

func TestBuildIndexCollisionKeepsFirst(t *testing.T) {
	entries := []KnowledgeEntry{
		{ID: "first", RawText: "FAQ: Как открыть карту?\nОтвет: Первый ответ."},
		{ID: "second", RawText: "FAQ: как открыть   КАРТУ?\nОтвет: Второй ответ."},
	}
	idx, err := BuildIndex(entries, zap.NewNop())
	require.NoError(t, err)

	rec, ok := idx.Lookup("как открыть карту")
	require.True(t, ok)
	assert.Equal(t, "first", rec.Entry.ID)
	assert.Equal(t, "Первый ответ.", rec.Answer)
	assert.Equal(t, 1, idx.Stats().Collisions)
	assert.Len(t, idx.Records(), 1)
}

func TestBuildIndexEmptyCollection(t *testing.T) {
	_, err := BuildIndex(nil, zap.NewNop())
	assert.True(t, apperrors.IsEmptyCollection(err))
}

func TestBuildIndexDoesNotAliasInput(t *testing.T) {
	entries := sampleEntries()
	idx, err := BuildIndex(entries, zap.NewNop())
	require.NoError(t, err)

	entries[0].RawText = "changed"
	assert.NotEqual(t, "changed", idx.Entries()[0].RawText)
}
