package rag

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const minKeywordRunes = 3

// stopWords are dropped before keyword matching. Bank and brand names appear in
// nearly every document and carry no signal.
var stopWords = map[string]struct{}{
	"ли": {}, "предоставляет": {}, "банк": {}, "бакай": {}, "услуги": {},
	"ваш": {}, "наш": {}, "это": {}, "что": {}, "как": {}, "где": {},
	"когда": {}, "почему": {}, "какой": {}, "какая": {}, "какие": {},
	"или": {}, "и": {}, "в": {}, "на": {}, "с": {}, "для": {},
}

// phraseGroup pulls a set of related words into the keyword set whenever any
// word of phrase occurs in the text.
type phraseGroup struct {
	phrase  string
	related []string
}

var phraseGroups = []phraseGroup{
	{phrase: "сейфовых ячеек", related: []string{"сейфов", "ячеек", "сейфовых", "депозитных"}},
	{phrase: "депозитных ячеек", related: []string{"депозитных", "ячеек", "сейфовых"}},
	{phrase: "банковских ячеек", related: []string{"банковских", "ячеек", "сейфовых"}},
}

// ExtractKeywords returns the distinct, sorted keywords of text.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)
	set := make(map[string]struct{})

	for _, token := range tokenize(lower) {
		if utf8.RuneCountInString(token) < minKeywordRunes {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		set[token] = struct{}{}
	}

	for _, group := range phraseGroups {
		if !containsAnyWord(lower, group.phrase) {
			continue
		}
		for _, word := range group.related {
			set[word] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(set))
	for kw := range set {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}

func containsAnyWord(text, phrase string) bool {
	for _, word := range strings.Fields(phrase) {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// keywordOverlap counts keywords that occur as substrings of lowered.
func keywordOverlap(keywords []string, lowered string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			count++
		}
	}
	return count
}
