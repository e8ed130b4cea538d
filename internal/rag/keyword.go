package rag

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nickcecere/mindhub/internal/vector"
)

// Field weights for keyword scoring.
const (
	titleWeight   = 3
	sectionWeight = 2
	contentWeight = 1
	tagsWeight    = 1

	keywordScale = 10.0
)

// Keywords lower-cases query, splits it on whitespace and keeps tokens
// longer than two characters.
func Keywords(query string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// keywordSearch scores chunks by weighted substring hits. Scores are divided
// by ten; chunks without a hit are dropped.
func keywordSearch(chunks []vector.DocumentChunk, query string, topK int) []vector.SearchResult {
	keywords := Keywords(query)
	if len(keywords) == 0 {
		return nil
	}

	var results []vector.SearchResult
	for _, c := range chunks {
		title := strings.ToLower(c.Metadata.Title)
		section := strings.ToLower(c.Metadata.Section)
		content := strings.ToLower(c.Content)
		tags := strings.ToLower(strings.Join(c.Metadata.Tags, " "))

		score := 0
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				score += titleWeight
			}
			if strings.Contains(section, kw) {
				score += sectionWeight
			}
			if strings.Contains(content, kw) {
				score += contentWeight
			}
			if strings.Contains(tags, kw) {
				score += tagsWeight
			}
		}
		if score == 0 {
			continue
		}

		results = append(results, vector.SearchResult{
			Chunk: c,
			Score: float64(score) / keywordScale,
			Tier:  vector.TierKeyword,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
