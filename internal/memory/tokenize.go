package memory

import (
	"strings"
	"unicode"
)

// tokenize lowercases, strips punctuation, and drops tokens of two
// characters or fewer.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			out = append(out, f)
		}
	}
	return out
}

// matchFraction is the fraction of query terms that match any content
// term. Matching is substring-based in both directions to tolerate
// stemming variance ("schedule" finds "scheduler" and vice versa).
func matchFraction(queryTerms, contentTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	matched := 0
	for _, qt := range queryTerms {
		for _, ct := range contentTerms {
			if strings.Contains(ct, qt) || strings.Contains(qt, ct) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(queryTerms))
}
