// Package results implements the read-only pipeline over fetched job documents:
// filter, sort, paginate, export and the comparison/statistics aggregation.
package results

import (
	"fmt"
	"strings"

	"buffcomply/dashboard/models"
)

// Mode selects which entries of a job are inspected.
type Mode string

const (
	ModeSuccess Mode = "success"
	ModeErrors  Mode = "error"
)

// ParseMode accepts the API spellings of a mode. Empty means success.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "success", "resultados":
		return ModeSuccess, nil
	case "error", "errors", "errores":
		return ModeErrors, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// EntryFilter selects entries of a single job.
type EntryFilter struct {
	Search   string   // substring of the entry URL, case-insensitive
	Mode     Mode     // success or error entries
	Required []string // keywords that must be found; ignored in error mode
}

// Apply returns the entries of job that pass the filter, in stored order.
// With no required keywords every success entry passes.
func (f EntryFilter) Apply(job models.ScrapeJobResult) []models.ResultEntry {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.ResultEntry, 0, len(job.Results))

	for _, entry := range job.Results {
		if needle != "" && !strings.Contains(strings.ToLower(entry.URL), needle) {
			continue
		}
		if f.Mode == ModeErrors {
			if entry.IsError() {
				out = append(out, entry)
			}
			continue
		}
		if entry.IsError() || !hasAll(entry, f.Required) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func hasAll(entry models.ResultEntry, required []string) bool {
	for _, kw := range required {
		if !entry.Found(kw) {
			return false
		}
	}
	return true
}

// UnknownKeywords returns the required keywords that are not part of the job vocabulary.
// Error mode ignores keyword conditions, so it never reports any.
func (f EntryFilter) UnknownKeywords(job models.ScrapeJobResult) []string {
	if f.Mode == ModeErrors {
		return nil
	}
	vocab := make(map[string]struct{})
	for _, kw := range job.Vocabulary() {
		vocab[kw] = struct{}{}
	}
	var unknown []string
	for _, kw := range f.Required {
		if _, ok := vocab[kw]; !ok {
			unknown = append(unknown, kw)
		}
	}
	return unknown
}

// FilterJobs keeps the jobs whose title or seed URLs contain search.
func FilterJobs(jobs []models.ScrapeJobResult, search string) []models.ScrapeJobResult {
	out := make([]models.ScrapeJobResult, 0, len(jobs))
	for _, job := range jobs {
		if job.MatchesText(search) {
			out = append(out, job)
		}
	}
	return out
}
