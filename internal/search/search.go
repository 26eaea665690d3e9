package search

import (
	"sort"
	"strings"

	ranked "github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/rickdex/internal/domain"
)

// Result is one ranked hit.
type Result struct {
	Record   domain.CharacterRecord
	Distance int // Levenshtein distance to the query (lower = better)
}

// Characters ranks records whose display name or remote name contains the
// query's characters in order, case-insensitively and ignoring diacritics.
// Results are sorted by distance, ties keep fetch order.
func Characters(query string, records []domain.CharacterRecord) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	best := make(map[int]int) // record index -> best distance
	for _, names := range [][]string{displayNames(records), remoteNames(records)} {
		for _, r := range ranked.RankFindNormalizedFold(query, names) {
			if d, ok := best[r.OriginalIndex]; !ok || r.Distance < d {
				best[r.OriginalIndex] = r.Distance
			}
		}
	}

	results := make([]Result, 0, len(best))
	indexes := make([]int, 0, len(best))
	for i := range best {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		results = append(results, Result{Record: records[i], Distance: best[i]})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results
}

func displayNames(records []domain.CharacterRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.GetTitle()
	}
	return out
}

func remoteNames(records []domain.CharacterRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}
