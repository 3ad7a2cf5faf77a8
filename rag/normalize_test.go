package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "question_mark", in: "Карта?", want: "карта"},
		{name: "collapses_whitespace", in: "  Как   открыть\tкарту ", want: "как открыть карту"},
		{name: "punctuation_between_words", in: "Кредит - это, займ!", want: "кредит это займ"},
		{name: "keeps_digits_and_underscore", in: "Тариф_2024: 5%", want: "тариф_2024 5"},
		{name: "non_breaking_space", in: "SWIFT\u00a0перевод", want: "swift перевод"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Карта?",
		"a - b",
		"  Где находится   ГОЛОВНОЙ офис?! ",
		"İstanbul / ÇAY",
		"3. Что такое SWIFT?",
		"  word ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeEquatesPunctuationVariants(t *testing.T) {
	assert.Equal(t, Normalize("Карта?"), Normalize("карта"))
	assert.Equal(t, Normalize("Как открыть карту?"), Normalize("как  открыть карту"))
}

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3. Как открыть карту?", "Как открыть карту?"},
		{"12.Где банкомат", "Где банкомат"},
		{"  Как   открыть  ", "Как открыть"},
		{"Тариф 3. пакет", "Тариф 3. пакет"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanQuery(tt.in))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("карта", "карта"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("карта", ""))
	assert.Equal(t, 0.75, Similarity("abcd", "abce"))
	assert.InDelta(t, 34.0/35.0, Similarity("как открыть карту", "как открыть карту?"), 1e-9)
	assert.Equal(t, Similarity("кредит", "депозит"), Similarity("депозит", "кредит"))
}
