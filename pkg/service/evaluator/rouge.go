package evaluator

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// tokenize lowercases the text, extracts alphanumeric tokens, and applies
// snowball stemming to tokens longer than three characters (matching the
// conventional ROUGE normalization).
func tokenize(text string) []string {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	for i, tok := range tokens {
		if len(tok) > 3 {
			tokens[i] = english.Stem(tok, false)
		}
	}
	return tokens
}

// ngramCounts builds n-gram occurrence counts over a token sequence
func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

// fmeasure computes the balanced F-score from match/total counts
func fmeasure(matches, candidateTotal, referenceTotal int) float64 {
	if candidateTotal == 0 || referenceTotal == 0 || matches == 0 {
		return 0
	}

	precision := float64(matches) / float64(candidateTotal)
	recall := float64(matches) / float64(referenceTotal)
	return 2 * precision * recall / (precision + recall)
}

// rougeN computes the clipped n-gram overlap F-measure
func rougeN(candidate, reference []string, n int) float64 {
	candCounts := ngramCounts(candidate, n)
	refCounts := ngramCounts(reference, n)

	matches := 0
	for gram, count := range candCounts {
		if refCount, ok := refCounts[gram]; ok {
			if refCount < count {
				count = refCount
			}
			matches += count
		}
	}

	candTotal := len(candidate) - n + 1
	refTotal := len(reference) - n + 1
	if candTotal < 0 {
		candTotal = 0
	}
	if refTotal < 0 {
		refTotal = 0
	}

	return fmeasure(matches, candTotal, refTotal)
}

// lcsLength computes the longest common subsequence length of two token
// sequences
func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
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

// rougeL computes the LCS-based F-measure
func rougeL(candidate, reference []string) float64 {
	return fmeasure(lcsLength(candidate, reference), len(candidate), len(reference))
}

// scoreRouge computes the three lexical-overlap metrics between a candidate
// summary and a reference text. Empty input on either side scores zero.
func scoreRouge(candidate, reference string) (rouge1, rouge2, rougeLScore float64) {
	candTokens := tokenize(candidate)
	refTokens := tokenize(reference)

	return rougeN(candTokens, refTokens, 1),
		rougeN(candTokens, refTokens, 2),
		rougeL(candTokens, refTokens)
}
