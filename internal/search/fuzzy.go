package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/rickdex/internal/domain"
)

// FuzzyMatch represents a filter match result
type FuzzyMatch struct {
	Index          int   // Index in source slice
	Score          int   // Match score (higher = better)
	MatchedIndexes []int // Character positions that matched (for highlighting)
}

// recordTitles adapts records to fuzzy.Source without copying names
type recordTitles []domain.CharacterRecord

func (r recordTitles) String(i int) string { return r[i].GetTitle() }
func (r recordTitles) Len() int            { return len(r) }

// Filter matches the query against display names as a subsequence, the way
// an interactive list filter narrows as you type. Best matches first.
// An empty query matches nothing.
func Filter(query string, records []domain.CharacterRecord) []FuzzyMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	found := fuzzy.FindFrom(query, recordTitles(records))
	matches := make([]FuzzyMatch, len(found))
	for i, m := range found {
		matches[i] = FuzzyMatch{
			Index:          m.Index,
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		}
	}
	return matches
}
