package rag

import "strings"

var (
	germanWords = []string{
		"der", "die", "das", "und", "ist", "sind", "für", "mit", "auf", "zu",
		"von", "über", "was", "wie", "wo", "wann", "warum",
	}
	englishWords = []string{
		"the", "is", "are", "and", "for", "with", "what", "how", "where",
		"when", "why", "can", "will", "would",
	}
)

// DetectLanguage guesses the reply language of query. Each stop word found
// as a substring of the lower-cased query counts once; "de" wins ties.
func DetectLanguage(query string) string {
	q := strings.ToLower(query)

	german := countPresent(q, germanWords)
	english := countPresent(q, englishWords)
	if german >= english {
		return "de"
	}
	return "en"
}

func countPresent(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}
