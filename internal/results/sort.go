package results

import (
	"fmt"
	"sort"
	"strings"

	"buffcomply/dashboard/models"
)

// SortKey is one of the two job orderings.
type SortKey string

const (
	SortByRecency SortKey = "recency"
	SortByMatches SortKey = "matches"
)

func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recency", "date", "fecha":
		return SortByRecency, nil
	case "matches", "coincidences", "coincidencias":
		return SortByMatches, nil
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

// SortJobs returns a copy of jobs ordered by key, descending. Equal keys keep input order.
// The matches ordering uses the stored total_coincidences.
func SortJobs(jobs []models.ScrapeJobResult, key SortKey) []models.ScrapeJobResult {
	sorted := append([]models.ScrapeJobResult(nil), jobs...)
	switch key {
	case SortByMatches:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].TotalCoincidences > sorted[j].TotalCoincidences
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp().After(sorted[j].Timestamp())
		})
	}
	return sorted
}
