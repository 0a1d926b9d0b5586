package complyclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	path     string
	query    url.Values
	rawQuery string
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	calls := &[]recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*calls = append(*calls, recorded{path: r.URL.Path, query: r.URL.Query(), rawQuery: r.URL.RawQuery})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func newTestClient(baseURL string, observe ObserveFunc) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(Options{BaseURL: baseURL, Timeout: 5 * time.Second, Observe: observe}, logger)
}

func TestSubmitScrape_BuildsQuery(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"title":"T","results":{}}`)

	var observed []int
	c := newTestClient(srv.URL, func(endpoint string, status int, _ time.Duration) {
		assert.Equal(t, "/api/v1/scrape/", endpoint)
		observed = append(observed, status)
	})

	body, err := c.SubmitScrape(context.Background(), ScrapeParams{
		Title:    "Casinos BR",
		URLs:     []string{"https://a.com", "https://b.com"},
		Keywords: []string{"bonus", "boas vindas"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","results":{}}`, string(body))

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/api/v1/scrape/", call.path)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, call.query["urls"])
	assert.Equal(t, []string{"bonus", "boas vindas"}, call.query["keywords"])
	assert.Equal(t, "Casinos BR", call.query.Get("title"))
	assert.Equal(t, "1", call.query.Get("max_depth"))
	assert.Equal(t, []int{http.StatusOK}, observed)
}

func TestSubmitSearch_BuildsQuery(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"status":"queued"}`)
	c := newTestClient(srv.URL, nil)

	_, err := c.SubmitSearch(context.Background(), SearchParams{
		Query:      "mejores casinos",
		Keywords:   []string{"casino", "bonus"},
		Country:    "br",
		MaxResults: 50,
	})
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "/api/v1/google-search/", call.path)
	assert.Equal(t, "mejores casinos", call.query.Get("query"))
	assert.Equal(t, []string{"casino", "bonus"}, call.query["keywords"])
	assert.Equal(t, "br", call.query.Get("country"))
	assert.Equal(t, "50", call.query.Get("max_results"))
	assert.Equal(t, "1", call.query.Get("max_depth"))
}

func TestForwardSearch_PassesQueryThrough(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `[]`)
	c := newTestClient(srv.URL, nil)

	_, err := c.ForwardSearch(context.Background(), "query=a+b&keywords=x&keywords=y&country=es")
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "a b", call.query.Get("query"))
	assert.Equal(t, []string{"x", "y"}, call.query["keywords"])
	assert.Equal(t, "es", call.query.Get("country"))
	assert.Equal(t, "query=a+b&keywords=x&keywords=y&country=es", call.rawQuery)
}

func TestClient_APIError(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusUnprocessableEntity, `{"detail":"max_results out of range"}`)
	c := newTestClient(srv.URL, nil)

	_, err := c.SubmitSearch(context.Background(), SearchParams{Query: "q", MaxResults: 1000})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "max_results out of range", apiErr.Detail)
	assert.Len(t, *calls, 1, "no retries")
}

func TestClient_NonJSONBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `<html>oops</html>`)
	c := newTestClient(srv.URL, nil)

	_, err := c.SubmitScrape(context.Background(), ScrapeParams{Title: "T"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.SubmitScrape(ctx, ScrapeParams{Title: "T"})
	assert.ErrorIs(t, err, context.Canceled)
}
