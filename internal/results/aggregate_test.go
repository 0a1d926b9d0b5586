package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buffcomply/dashboard/models"
)

func TestCompare(t *testing.T) {
	jobs := []models.ScrapeJobResult{
		{
			Title:             "BR",
			StartURLs:         []string{"https://gainblers.com/br/"},
			Keywords:          []string{"bonus", "casino"},
			ScrapedSites:      3,
			TotalCoincidences: 3,
			Results: models.ResultSet{
				models.NewSuccessEntry("https://gainblers.com/br/", findings("bonus", true, "casino", true)),
				models.NewSuccessEntry("https://gainblers.com/br/a", findings("bonus", true, "casino", false)),
				models.NewErrorEntry("https://gainblers.com/br/b", "timeout"),
			},
		},
		{
			Title:             "OH",
			StartURLs:         []string{"betohio.com"},
			Keywords:          []string{"casino", "poker"},
			ScrapedSites:      1,
			TotalCoincidences: 1,
			Results: models.ResultSet{
				models.NewSuccessEntry("https://betohio.com", findings("casino", false, "poker", true)),
			},
		},
	}

	cmp := Compare(jobs)
	assert.Equal(t, []string{"bonus", "casino", "poker"}, cmp.Keywords)
	require.Len(t, cmp.Rows, 2)

	assert.Equal(t, "gainblers.com", cmp.Rows[0].Site)
	assert.Equal(t, map[string]int{"bonus": 2, "casino": 1, "poker": 0}, cmp.Rows[0].KeywordHits)
	assert.Equal(t, 3, cmp.Rows[0].TotalCoincidences)

	assert.Equal(t, "betohio.com", cmp.Rows[1].Site)
	assert.Equal(t, map[string]int{"bonus": 0, "casino": 0, "poker": 1}, cmp.Rows[1].KeywordHits)
}

func TestCompare_Empty(t *testing.T) {
	cmp := Compare(nil)
	assert.Empty(t, cmp.Keywords)
	assert.Empty(t, cmp.Rows)
}

func TestComputeStats(t *testing.T) {
	empty := ComputeStats(nil)
	assert.Zero(t, empty.Jobs)
	assert.Zero(t, empty.AverageDurationSeconds)

	q := "casinos"
	stats := ComputeStats([]models.ScrapeJobResult{
		{Kind: models.JobKindSiteScrape, ScrapedSites: 3, TotalCoincidences: 5, DurationSeconds: 10},
		{Kind: models.JobKindSearch, SearchQuery: &q, ScrapedSites: 7, TotalCoincidences: 1, DurationSeconds: 20},
	})
	assert.Equal(t, 2, stats.Jobs)
	assert.Equal(t, 10, stats.ScrapedSites)
	assert.Equal(t, 6, stats.TotalCoincidences)
	assert.InDelta(t, 15.0, stats.AverageDurationSeconds, 1e-9)
	assert.Equal(t, 1, stats.ByKind[models.JobKindSearch])
	assert.Equal(t, 1, stats.ByKind[models.JobKindSiteScrape])
}
