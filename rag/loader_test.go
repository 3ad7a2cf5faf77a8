package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "bakai-assistant/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const knowledgeJSON = `[
  {"content": "FAQ: Как открыть карту?\nОтвет: В филиале.", "metadata": {"url": "https://bakai.kg/ru/individual/cards/", "source": null, "tags": ["cards", "faq"], "page": 3, "extra": {"lang": "ru"}, "active": true}},
  {"content": "   "},
  {"question": "Где банкомат?", "answer": "На Тыныстанова."},
  {"id": "doc-1", "content": "Банкоматы работают круглосуточно."}
]`

func TestDecodeEntries(t *testing.T) {
	entries, err := DecodeEntries([]byte(knowledgeJSON))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	meta := entries[0].Attributes
	assert.Equal(t, "https://bakai.kg/ru/individual/cards/", meta["url"])
	assert.Equal(t, "", meta["source"])
	assert.Equal(t, `["cards","faq"]`, meta["tags"])
	assert.Equal(t, "3", meta["page"])
	assert.Equal(t, `{"lang":"ru"}`, meta["extra"])
	assert.Equal(t, "true", meta["active"])

	assert.Equal(t, "Где банкомат?", entries[1].StructuredQuestion)
	assert.Equal(t, "На Тыныстанова.", entries[1].StructuredAnswer)
	assert.Equal(t, "doc-1", entries[2].ID)
	assert.Nil(t, entries[2].Attributes)
}

func TestDecodeEntriesRejectsInvalidJSON(t *testing.T) {
	_, err := DecodeEntries([]byte(`{"content": "not a list"}`))
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestFileSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(knowledgeJSON), 0o644))

	entries, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.Error(t, err)
}

func TestFileSourceFeedsRetriever(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(knowledgeJSON), 0o644))

	r := newTestRetriever(t, nil)
	stats, err := r.LoadFrom(context.Background(), NewFileSource(path))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.FaqCount)

	res, err := r.Resolve(context.Background(), "Где банкомат?")
	require.NoError(t, err)
	answer, ok := res.DirectAnswer()
	require.True(t, ok)
	assert.Equal(t, "На Тыныстанова.", answer)
	assert.Equal(t, "FAQ: Где банкомат?\nОтвет: На Тыныстанова.", res.Matches[0].Text)
}
