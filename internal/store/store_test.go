package store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"buffcomply/dashboard/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestDecodeDocument_KeepsStoredOrder(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2024, 2, 17, 10, 30, 0, 0, time.UTC)
	doc := bson.D{
		{Key: "_id", Value: oid},
		{Key: "title", Value: "Casinos BR"},
		{Key: "start_urls", Value: bson.A{"https://gainblers.com/br/"}},
		{Key: "results", Value: bson.D{
			{Key: "https://gainblers.com/br/z", Value: bson.D{{Key: "bonus", Value: true}, {Key: "casino", Value: false}}},
			{Key: "https://gainblers.com/br/a", Value: bson.D{{Key: "error", Value: "timeout"}}},
		}},
		{Key: "total_coincidences", Value: int32(1)},
		{Key: "scraped_sites", Value: int64(2)},
		{Key: "duration_seconds", Value: 12.5},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(created)},
	}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	job, err := decodeDocument(raw)
	require.NoError(t, err)

	assert.Equal(t, oid.Hex(), job.ID)
	assert.Equal(t, models.JobKindSiteScrape, job.Kind)
	assert.Equal(t, 1, job.TotalCoincidences)
	assert.Equal(t, 2, job.ScrapedSites)
	assert.Equal(t, created, job.Timestamp())

	require.Len(t, job.Results, 2)
	assert.Equal(t, "https://gainblers.com/br/z", job.Results[0].URL)
	assert.Equal(t, []string{"bonus", "casino"}, job.Results[0].Keywords.Keywords())
	assert.True(t, job.Results[1].IsError())
	assert.Equal(t, "timeout", job.Results[1].Message)
}

func TestOpen_RejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), Options{URI: "redis://localhost"}, quietLogger())
	assert.ErrorContains(t, err, "unsupported store scheme")

	_, err = Open(context.Background(), Options{}, quietLogger())
	assert.Error(t, err)

	_, err = Open(context.Background(), Options{URI: "https://example.supabase.co"}, quietLogger())
	assert.ErrorContains(t, err, "service key")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, clampLimit(0))
	assert.Equal(t, 100, clampLimit(500))
	assert.Equal(t, 20, clampLimit(20))
}

func TestPostgrestStore(t *testing.T) {
	var lastQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/scrape_results" {
			http.NotFound(w, r)
			return
		}
		lastQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("id") == "eq.missing" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id": 7, "title": "Ohio", "start_urls": ["https://betohio.com"],
			"results": {"https://betohio.com": {"bonus": true}},
			"total_coincidences": 1, "created_at": "2024-02-17T11:45:00+00:00"}]`))
	}))
	defer srv.Close()

	s, err := OpenPostgrest(Options{URI: srv.URL, APIKey: "service-key", Collection: DefaultCollection}, quietLogger())
	require.NoError(t, err)

	jobs, err := s.LatestJobs(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "7", jobs[0].ID)
	assert.Equal(t, 1, jobs[0].RecountCoincidences())
	assert.Contains(t, lastQuery, "created_at.desc")
	assert.Contains(t, lastQuery, "limit=100")

	job, err := s.GetJob(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Ohio", job.Title)

	_, err = s.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
