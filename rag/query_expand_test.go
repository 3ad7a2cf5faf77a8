package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateVariants(t *testing.T) {
	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{
			name:  "ordinal_and_synonyms_fill_cap",
			query: "1. Как открыть карту?",
			limit: 8,
			want: []string{
				"1. Как открыть карту?",
				"1. как открыть карту?",
				"Как открыть карту?",
				"как открыть карту?",
				"1. как открыть карточку?",
				"1. как открыть пластик?",
				"1. способ открыть карту?",
				"1. каким образом открыть карту?",
			},
		},
		{
			name:  "lowercase_query_deduplicates",
			query: "где банкомат",
			limit: 8,
			want: []string{
				"где банкомат",
				"адрес банкомат",
				"местоположение банкомат",
			},
		},
		{
			name:  "safe_deposit_topic",
			query: "Аренда сейфа",
			limit: 8,
			want: []string{
				"Аренда сейфа",
				"аренда сейфа",
				"сейфовые ячейки",
				"банковские ячейки",
				"индивидуальные сейфовые ячейки",
				"хранение ценностей",
			},
		},
		{
			name:  "whole_word_only",
			query: "какой кешбэк",
			limit: 8,
			want:  []string{"какой кешбэк"},
		},
		{
			name:  "small_limit",
			query: "Как перевести SWIFT",
			limit: 3,
			want: []string{
				"Как перевести SWIFT",
				"как перевести swift",
				"как отправить swift",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateVariants(tt.query, tt.limit))
		})
	}
}

func TestGenerateVariantsNeverExceedsDefaultCap(t *testing.T) {
	query := "Как перевести SWIFT на карту, где документы и лимиты? Предоставляет ли услуги аренды сейфовых ячеек"
	variants := GenerateVariants(query, 0)
	assert.Len(t, variants, DefaultMaxVariants)
	assert.Equal(t, query, variants[0])

	seen := make(map[string]bool)
	for _, v := range variants {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, containsPhrase("как открыть карту", "как"))
	assert.True(t, containsPhrase("узнать, как?", "как"))
	assert.False(t, containsPhrase("какой кешбэк", "как"))
	assert.False(t, containsPhrase("что угодно", " "))
}
