package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buffcomply/dashboard/models"
)

func findings(pairs ...interface{}) models.Findings {
	var f models.Findings
	for i := 0; i+1 < len(pairs); i += 2 {
		f = append(f, models.KeywordFinding{Keyword: pairs[i].(string), Found: pairs[i+1].(bool)})
	}
	return f
}

func sampleJob() models.ScrapeJobResult {
	return models.ScrapeJobResult{
		Title:    "Casinos",
		Keywords: []string{"bonus", "casino"},
		Results: models.ResultSet{
			models.NewSuccessEntry("https://a.com", findings("bonus", true, "casino", true)),
			models.NewSuccessEntry("https://a.com/promo", findings("bonus", true, "casino", false)),
			models.NewErrorEntry("https://a.com/down", "503"),
			models.NewSuccessEntry("https://b.com", findings("bonus", false, "casino", false)),
			models.NewErrorEntry("https://b.com/promo", "timeout"),
		},
	}
}

func urls(entries []models.ResultEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.URL)
	}
	return out
}

func TestEntryFilter_NoConditionsKeepsAllSuccessEntries(t *testing.T) {
	got := EntryFilter{Mode: ModeSuccess}.Apply(sampleJob())
	assert.Equal(t, []string{"https://a.com", "https://a.com/promo", "https://b.com"}, urls(got))
}

func TestEntryFilter_RequiredKeywordsAreSound(t *testing.T) {
	job := sampleJob()
	filter := EntryFilter{Mode: ModeSuccess, Required: []string{"bonus", "casino"}}
	got := filter.Apply(job)
	require.Equal(t, []string{"https://a.com"}, urls(got))
	for _, entry := range got {
		for _, kw := range filter.Required {
			assert.True(t, entry.Found(kw))
		}
	}
}

func TestEntryFilter_ErrorModeIgnoresKeywords(t *testing.T) {
	got := EntryFilter{Mode: ModeErrors, Required: []string{"bonus"}, Search: "PROMO"}.Apply(sampleJob())
	require.Len(t, got, 1)
	assert.Equal(t, "https://b.com/promo", got[0].URL)
	assert.Equal(t, "timeout", got[0].Message)
}

func TestEntryFilter_SearchIsCaseInsensitive(t *testing.T) {
	got := EntryFilter{Mode: ModeSuccess, Search: "B.COM"}.Apply(sampleJob())
	assert.Equal(t, []string{"https://b.com"}, urls(got))
}

func TestEntryFilter_UnknownKeywords(t *testing.T) {
	f := EntryFilter{Required: []string{"bonus", "poker"}}
	assert.Equal(t, []string{"poker"}, f.UnknownKeywords(sampleJob()))

	f.Mode = ModeErrors
	assert.Empty(t, f.UnknownKeywords(sampleJob()))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("errores")
	require.NoError(t, err)
	assert.Equal(t, ModeErrors, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSuccess, m)

	_, err = ParseMode("both")
	assert.Error(t, err)
}

func TestFilterJobs_MatchesTitleOrSeedURL(t *testing.T) {
	jobs := []models.ScrapeJobResult{
		{Title: "Brasil", StartURLs: []string{"https://gainblers.com/br/"}},
		{Title: "Ohio", StartURLs: []string{"https://betohio.com"}},
	}
	assert.Len(t, FilterJobs(jobs, ""), 2)
	assert.Equal(t, "Brasil", FilterJobs(jobs, "GAINBLERS")[0].Title)
	assert.Equal(t, "Ohio", FilterJobs(jobs, "ohio")[0].Title)
	assert.Empty(t, FilterJobs(jobs, "nothing"))
}

func at(day int) *time.Time {
	ts := time.Date(2024, 2, day, 12, 0, 0, 0, time.UTC)
	return &ts
}

func TestSortJobs(t *testing.T) {
	jobs := []models.ScrapeJobResult{
		{Title: "old", CreatedAt: at(1), TotalCoincidences: 9},
		{Title: "new", CreatedAt: at(20), TotalCoincidences: 2},
		{Title: "legacy", LastScan: at(10), TotalCoincidences: 9},
	}

	byDate := SortJobs(jobs, SortByRecency)
	assert.Equal(t, "new", byDate[0].Title)
	assert.Equal(t, "legacy", byDate[1].Title)
	assert.Equal(t, "old", byDate[2].Title)

	byMatches := SortJobs(jobs, SortByMatches)
	for i := 1; i < len(byMatches); i++ {
		assert.GreaterOrEqual(t, byMatches[i-1].TotalCoincidences, byMatches[i].TotalCoincidences)
	}
	// ties keep input order
	assert.Equal(t, "old", byMatches[0].Title)
	assert.Equal(t, "legacy", byMatches[1].Title)

	assert.Equal(t, "old", jobs[0].Title, "input is not reordered")
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("coincidencias")
	require.NoError(t, err)
	assert.Equal(t, SortByMatches, k)

	_, err = ParseSortKey("alphabetical")
	assert.Error(t, err)
}
