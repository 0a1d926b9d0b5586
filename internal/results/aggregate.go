package results

import (
	"net/url"
	"strings"

	"buffcomply/dashboard/models"
)

// ComparisonRow is one job in the side-by-side comparison.
type ComparisonRow struct {
	ID                string         `json:"id,omitempty"`
	Title             string         `json:"title"`
	Site              string         `json:"site"`
	ScrapedSites      int            `json:"scraped_sites"`
	TotalCoincidences int            `json:"total_coincidences"`
	KeywordHits       map[string]int `json:"keyword_hits"`
}

// Comparison lines jobs up against the union of their keyword vocabularies.
type Comparison struct {
	Keywords []string        `json:"keywords"`
	Rows     []ComparisonRow `json:"rows"`
}

// Compare builds the comparison table. Keywords appear in first-seen order across jobs;
// a job that does not track a keyword reports zero hits for it.
func Compare(jobs []models.ScrapeJobResult) Comparison {
	cmp := Comparison{Keywords: []string{}, Rows: make([]ComparisonRow, 0, len(jobs))}
	seen := make(map[string]struct{})

	for _, job := range jobs {
		for _, kw := range job.Vocabulary() {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			cmp.Keywords = append(cmp.Keywords, kw)
		}
	}

	for _, job := range jobs {
		hits := make(map[string]int, len(cmp.Keywords))
		for _, kw := range cmp.Keywords {
			hits[kw] = 0
		}
		for _, entry := range job.Results {
			if entry.IsError() {
				continue
			}
			for _, kf := range entry.Keywords {
				if _, tracked := hits[kf.Keyword]; tracked && kf.Found {
					hits[kf.Keyword]++
				}
			}
		}
		cmp.Rows = append(cmp.Rows, ComparisonRow{
			ID:                job.ID,
			Title:             job.Title,
			Site:              siteOf(job),
			ScrapedSites:      job.ScrapedSites,
			TotalCoincidences: job.TotalCoincidences,
			KeywordHits:       hits,
		})
	}
	return cmp
}

// siteOf is the host of the first seed URL, or the raw seed when it does not parse.
func siteOf(job models.ScrapeJobResult) string {
	if len(job.StartURLs) == 0 {
		return ""
	}
	raw := strings.TrimSpace(job.StartURLs[0])
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Hostname()
}

// Stats are the global figures of the statistics view.
type Stats struct {
	Jobs                   int                    `json:"jobs"`
	ScrapedSites           int                    `json:"scraped_sites"`
	TotalCoincidences      int                    `json:"total_coincidences"`
	AverageDurationSeconds float64                `json:"average_duration_seconds"`
	ByKind                 map[models.JobKind]int `json:"by_kind"`
}

// ComputeStats sums the stored counters of jobs. The average duration of an empty set is 0.
func ComputeStats(jobs []models.ScrapeJobResult) Stats {
	stats := Stats{
		Jobs:   len(jobs),
		ByKind: map[models.JobKind]int{models.JobKindSiteScrape: 0, models.JobKindSearch: 0},
	}
	var duration float64
	for _, job := range jobs {
		stats.ScrapedSites += job.ScrapedSites
		stats.TotalCoincidences += job.TotalCoincidences
		stats.ByKind[job.Kind]++
		duration += job.DurationSeconds
	}
	if len(jobs) > 0 {
		stats.AverageDurationSeconds = duration / float64(len(jobs))
	}
	return stats
}
