package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query    string
		want     Category
		raw      int
		weighted float64
	}{
		{"кредит", Credits, 15, 14.25},
		{"Как открыть карту?", Cards, 13, 13},
		{"Где находится ближайший банкомат", ATM, 13, 7.8},
		{"курс доллара", Exchange, 19, 13.3},
		{"  СТРАХОВКА  ", Insurance, 15, 12},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := Classify(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.raw, got.RawScore)
			assert.InDelta(t, tt.weighted, got.WeightedScore, 1e-9)
		})
	}
}

func TestClassifyUnresolved(t *testing.T) {
	for _, q := range []string{"", "   ", "zzz qqq"} {
		got, ok := Classify(q)
		assert.False(t, ok)
		assert.Equal(t, General, got.Category)
	}
}

func TestAnalyzeOrdersAllScoringCategories(t *testing.T) {
	scores := Analyze("Где находится ближайший банкомат")
	require.Len(t, scores, 2)
	assert.Equal(t, ATM, scores[0].Category)
	assert.Equal(t, []string{"банкомат", "ближайший банкомат"}, scores[0].MatchedPatterns)
	assert.Equal(t, Branches, scores[1].Category)
	assert.InDelta(t, 1.95, scores[1].WeightedScore, 1e-9)
}

func TestRankTieBreaks(t *testing.T) {
	scores := []Score{
		{Category: Services, Priority: 50, WeightedScore: 6},
		{Category: Insurance, Priority: 80, WeightedScore: 6},
		{Category: Cards, Priority: 100, WeightedScore: 5},
		{Category: ATM, Priority: 80, WeightedScore: 6},
	}
	rank(scores)

	var got []Category
	for _, s := range scores {
		got = append(got, s.Category)
	}
	// Insurance and ATM tie on priority here; table position decides.
	assert.Equal(t, []Category{Insurance, ATM, Services, Cards}, got)
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Analyze("оформить кредитную карту в офисе")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Analyze("оформить кредитную карту в офисе"))
	}
}

func TestClassifierCachesCopies(t *testing.T) {
	c, err := NewClassifier(NewLinks(testLinks()), 8, zap.NewNop())
	require.NoError(t, err)

	first, ok := c.Classify("Как открыть карту?")
	require.True(t, ok)
	first.MatchedPatterns[0] = "mutated"

	second, ok := c.Classify("как открыть карту?")
	require.True(t, ok)
	assert.Equal(t, []string{"карту", "открыть карту"}, second.MatchedPatterns)
	assert.Equal(t, 1, c.cache.Len())
}

func TestClassifierRoute(t *testing.T) {
	c, err := NewClassifier(NewLinks(testLinks()), 0, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  string
		docs   []map[string]string
		url    string
		source string
	}{
		{
			name:   "category_link",
			query:  "Как открыть карту?",
			url:    "https://bakai.kg/ru/individual/cards/",
			source: LinkFromCategory,
		},
		{
			name:   "document_override",
			query:  "Как открыть карту?",
			docs:   []map[string]string{{"url": "ftp://bakai.kg/cards"}, {"url": "https://bakai.kg/ru/individual/cards/visa-gold/"}},
			url:    "https://bakai.kg/ru/individual/cards/visa-gold/",
			source: LinkFromDocument,
		},
		{
			name:   "irrelevant_document",
			query:  "Как открыть карту?",
			docs:   []map[string]string{{"url": "https://bakai.kg/ru/individual/deposits/"}},
			url:    "https://bakai.kg/ru/individual/cards/",
			source: LinkFromCategory,
		},
		{
			name:   "unresolved",
			query:  "zzz",
			url:    "https://bakai.kg/ru/individual/",
			source: LinkFromGeneral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Route(tt.query, tt.docs)
			assert.Equal(t, tt.url, res.URL)
			assert.Equal(t, tt.source, res.LinkSource)
		})
	}
}

func TestClassifierAnalyzeIncludesLinks(t *testing.T) {
	c, err := NewClassifier(NewLinks(testLinks()), 0, nil)
	require.NoError(t, err)

	got := c.Analyze("кредит")
	require.NotEmpty(t, got)
	assert.Equal(t, Credits, got[0].Category)
	assert.Equal(t, "https://bakai.kg/ru/individual/credits/", got[0].URL)
}
