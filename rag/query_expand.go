package rag

import (
	"regexp"
	"strings"
)

// DefaultMaxVariants caps the phrasings sent to the neighbor service per query.
const DefaultMaxVariants = 8

type variantSynonym struct {
	phrase       string
	alternatives []string
	re           *regexp.Regexp
}

// variantSynonyms is applied in order; each phrase found in the lower-cased
// query yields one variant per alternative. Phrases should be lowercase.
var variantSynonyms = compileVariantSynonyms([]struct {
	phrase       string
	alternatives []string
}{
	{"сейфовых ячеек", []string{"депозитных ячеек", "банковских ячеек", "сейфов", "ячеек для хранения"}},
	{"аренды", []string{"аренда", "прокат", "предоставление", "услуг"}},
	{"предоставляет", []string{"предлагает", "есть", "имеет", "оказывает"}},
	{"услуги", []string{"сервис", "предложения", "возможности"}},
	{"перевести", []string{"отправить", "переслать", "сделать перевод"}},
	{"карту", []string{"карточку", "пластик"}},
	{"swift", []string{"свифт", "swift перевод", "международный перевод"}},
	{"как", []string{"способ", "каким образом"}},
	{"где", []string{"адрес", "местоположение"}},
	{"документы", []string{"справки", "бумаги", "требования"}},
	{"лимиты", []string{"ограничения", "пределы", "максимум"}},
	{"валютные", []string{"валютных", "обменных", "currency"}},
})

// safeDepositTopic triggers extra phrasings for safe-deposit box questions,
// which the knowledge base words in several different ways.
const safeDepositTopic = "сейф"

var safeDepositVariants = []string{
	"сейфовые ячейки",
	"банковские ячейки",
	"индивидуальные сейфовые ячейки",
	"хранение ценностей",
}

func compileVariantSynonyms(table []struct {
	phrase       string
	alternatives []string
}) []variantSynonym {
	out := make([]variantSynonym, 0, len(table))
	for _, row := range table {
		out = append(out, variantSynonym{
			phrase:       row.phrase,
			alternatives: row.alternatives,
			re:           regexp.MustCompile(`(^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(row.phrase) + `($|[^\p{L}\p{N}_])`),
		})
	}
	return out
}

// GenerateVariants returns up to limit distinct phrasings of query in
// first-seen order: the raw query, its lower-cased form, the ordinal-stripped
// forms, then synonym substitutions and topic rewrites.
func GenerateVariants(query string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxVariants
	}

	lower := strings.ToLower(query)
	cleaned := CleanQuery(query)

	variants := make([]string, 0, limit)
	seen := make(map[string]struct{})
	add := func(v string) bool {
		if len(variants) >= limit {
			return false
		}
		if strings.TrimSpace(v) == "" {
			return true
		}
		if _, dup := seen[v]; dup {
			return true
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
		return len(variants) < limit
	}

	for _, v := range []string{query, lower, cleaned, strings.ToLower(cleaned)} {
		if !add(v) {
			return variants
		}
	}

	for _, syn := range variantSynonyms {
		if !syn.re.MatchString(lower) {
			continue
		}
		for _, alt := range syn.alternatives {
			if !add(replacePhrase(syn.re, lower, alt)) {
				return variants
			}
		}
	}

	if strings.Contains(lower, safeDepositTopic) {
		for _, v := range safeDepositVariants {
			if !add(v) {
				return variants
			}
		}
	}

	return variants
}

// replacePhrase substitutes whole-word occurrences matched by re with alt,
// keeping the surrounding boundary characters.
func replacePhrase(re *regexp.Regexp, text, alt string) string {
	return re.ReplaceAllString(text, "${1}"+strings.ReplaceAll(alt, "$", "$$")+"${2}")
}

// containsPhrase checks if phrase exists as a word/phrase in text (not substring).
// Example: "как" won't match "какой", but will match "как открыть" or "узнать, как?"
func containsPhrase(text, phrase string) bool {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return false
	}

	// Pad text for boundary checking
	if !strings.HasPrefix(text, " ") {
		text = " " + text
	}
	if !strings.HasSuffix(text, " ") {
		text = text + " "
	}

	// Check for phrase with word boundaries
	searchPatterns := []string{
		" " + phrase + " ",
		" " + phrase + ".",
		" " + phrase + ",",
		" " + phrase + "?",
		" " + phrase + "!",
		" " + phrase + ":",
		" " + phrase + ";",
	}

	for _, pattern := range searchPatterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}

	return false
}
