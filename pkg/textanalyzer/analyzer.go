// Package textanalyzer turns raw text into the word-frequency profiles that the
// clustering engines compare.
package textanalyzer

import (
	"regexp"
	"strings"
)

const (
	// DefaultMinFraction drops words that make up less than 10% of a text.
	DefaultMinFraction = 0.1
	// DefaultMaxFraction drops words that make up more than 50% of a text.
	DefaultMaxFraction = 0.5
)

// markupRegex matches a single <...> span. Spans are not nested.
var markupRegex = regexp.MustCompile(`<[^>]+>`)

// tokenizerRegex extracts maximal runs of ASCII letters; everything else is a delimiter.
var tokenizerRegex = regexp.MustCompile(`[A-Za-z]+`)

// Tokenize strips markup tags from a text and splits it into lowercase words,
// in source order and without deduplication.
func Tokenize(text string) []string {
	text = markupRegex.ReplaceAllString(text, "")
	words := tokenizerRegex.FindAllString(text, -1)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// WordCounts returns the occurrences of each token in text along with the
// total number of tokens.
func WordCounts(text string) (map[string]int, int) {
	tokens := Tokenize(text)
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts, len(tokens)
}

// WordFrequencies counts the words of text and keeps only those whose share of
// all tokens lies within [minFraction, maxFraction]. Very common words ("the")
// and one-off words are dropped this way.
func WordFrequencies(text string, minFraction, maxFraction float64) map[string]int {
	counts, total := WordCounts(text)
	if total == 0 {
		return map[string]int{}
	}
	for word, count := range counts {
		frac := float64(count) / float64(total)
		if frac < minFraction || frac > maxFraction {
			delete(counts, word)
		}
	}
	return counts
}

// englishStopWords are common English words that carry no topical signal.
var englishStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"of": {}, "on": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {}, "will": {}, "with": {},
}

// IsStopWord reports whether token is an English stop word.
func IsStopWord(token string) bool {
	_, ok := englishStopWords[token]
	return ok
}
