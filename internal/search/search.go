package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	nameHitScore     = 100
	aliasHitScore    = 60
	categoryHitScore = 25
	bodyHitWeight    = 2
	bodyHitCap       = 20

	minQueryLength = 2
)

// IndexedEntry is the published-corpus view the search box ranks over.
type IndexedEntry struct {
	Name     string
	Slug     string
	Category string
	Aliases  []string
	Body     string
}

// Result pairs an entry with its relevance score.
type Result struct {
	Entry IndexedEntry
	Score int
}

// Rank scores published entries against a free-text query with the same
// weighted-substring philosophy as archive retrieval, at smaller scale.
// Zero-score entries are dropped; results come back score-descending.
func Rank(entries []IndexedEntry, query string, limit int) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil
	}

	var results []Result
	for _, e := range entries {
		score := scoreEntry(e, query)
		if score == 0 {
			continue
		}
		results = append(results, Result{Entry: e, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func scoreEntry(e IndexedEntry, query string) int {
	score := 0
	if strings.Contains(strings.ToLower(e.Name), query) {
		score += nameHitScore
	}
	for _, alias := range e.Aliases {
		if strings.Contains(strings.ToLower(alias), query) {
			score += aliasHitScore
			break
		}
	}
	if strings.Contains(strings.ToLower(e.Category), query) {
		score += categoryHitScore
	}
	if n := strings.Count(strings.ToLower(e.Body), query); n > 0 {
		hits := bodyHitWeight * n
		if hits > bodyHitCap {
			hits = bodyHitCap
		}
		score += hits
	}
	return score
}
