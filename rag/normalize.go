package rag

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`[\s\p{Z}]+`)
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Z}]+`)
	ordinalRe     = regexp.MustCompile(`^\d+\.\s*`)
	wordRe        = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
)

// Normalize produces the lookup key for a question: lower-cased, punctuation
// stripped, whitespace collapsed. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = punctuationRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanQuery strips a leading list ordinal ("3. ") and collapses whitespace.
// Case and punctuation are kept.
func CleanQuery(query string) string {
	s := collapseWhitespace(query)
	s = ordinalRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// tokenize splits lower-cased text into word tokens.
func tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// Similarity returns 2*LCS/(len(a)+len(b)) over runes, in [0,1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(total)
}

func lcsLength(a, b []rune) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
