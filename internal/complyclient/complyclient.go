// Package complyclient calls the external Buff Comply scraping API.
package complyclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	scrapePath = "/api/v1/scrape/"
	searchPath = "/api/v1/google-search/"

	// The dashboard only ever asks for single-level crawls.
	forwardedMaxDepth = "1"
)

// APIError is a non-2xx answer from the scraping API.
type APIError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("scraping api %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("scraping api %s: status %d: %s", e.Endpoint, e.Status, e.Detail)
}

// ErrInvalidResponse is returned when a 2xx body is not JSON.
var ErrInvalidResponse = errors.New("scraping api returned a non-JSON body")

// ObserveFunc receives the outcome of every call. status is 0 when no response arrived.
type ObserveFunc func(endpoint string, status int, elapsed time.Duration)

type Options struct {
	BaseURL string
	Timeout time.Duration
	Observe ObserveFunc
}

// Client is a thin resty wrapper. Calls are made once; there are no retries.
type Client struct {
	http    *resty.Client
	logger  *logrus.Logger
	observe ObserveFunc
}

func New(opts Options, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	c := &Client{http: httpClient, logger: logger, observe: opts.Observe}
	httpClient.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		c.record(res.Request.URL, res.StatusCode(), res.Time())
		return nil
	})
	httpClient.OnError(func(req *resty.Request, err error) {
		var status int
		var elapsed time.Duration
		var resErr *resty.ResponseError
		if errors.As(err, &resErr) && resErr.Response != nil {
			status = resErr.Response.StatusCode()
			elapsed = resErr.Response.Time()
		}
		c.record(req.URL, status, elapsed)
	})
	return c
}

func (c *Client) record(rawURL string, status int, elapsed time.Duration) {
	if c.observe == nil {
		return
	}
	endpoint := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		endpoint = u.Path
	}
	c.observe(endpoint, status, elapsed)
}

// ScrapeParams are the fields of a site scrape submission.
type ScrapeParams struct {
	Title    string
	URLs     []string
	Keywords []string
}

// SearchParams are the fields of a Google search submission.
type SearchParams struct {
	Query      string
	Keywords   []string
	Country    string
	MaxResults int
}

// ScrapeQuery builds the query string of a scrape submission.
func ScrapeQuery(p ScrapeParams) url.Values {
	q := url.Values{}
	for _, u := range p.URLs {
		q.Add("urls", u)
	}
	for _, kw := range p.Keywords {
		q.Add("keywords", kw)
	}
	q.Set("title", p.Title)
	q.Set("max_depth", forwardedMaxDepth)
	return q
}

// SearchQuery builds the query string of a search submission.
func SearchQuery(p SearchParams) url.Values {
	q := url.Values{}
	q.Set("query", p.Query)
	for _, kw := range p.Keywords {
		q.Add("keywords", kw)
	}
	q.Set("country", p.Country)
	q.Set("max_results", strconv.Itoa(p.MaxResults))
	q.Set("max_depth", forwardedMaxDepth)
	return q
}

// SubmitScrape starts a site scrape and returns the API's JSON answer.
func (c *Client) SubmitScrape(ctx context.Context, p ScrapeParams) (json.RawMessage, error) {
	c.logger.WithFields(logrus.Fields{
		"title":    p.Title,
		"urls":     len(p.URLs),
		"keywords": len(p.Keywords),
	}).Info("Submitting scrape job")
	return c.get(ctx, scrapePath, ScrapeQuery(p).Encode())
}

// SubmitSearch starts a Google search job and returns the API's JSON answer.
func (c *Client) SubmitSearch(ctx context.Context, p SearchParams) (json.RawMessage, error) {
	c.logger.WithFields(logrus.Fields{
		"query":       p.Query,
		"keywords":    len(p.Keywords),
		"country":     p.Country,
		"max_results": p.MaxResults,
	}).Info("Submitting search job")
	return c.get(ctx, searchPath, SearchQuery(p).Encode())
}

// ForwardSearch passes a raw query string through to the search endpoint unchanged.
func (c *Client) ForwardSearch(ctx context.Context, rawQuery string) (json.RawMessage, error) {
	return c.get(ctx, searchPath, strings.TrimPrefix(rawQuery, "?"))
}

// get calls path with rawQuery appended verbatim.
func (c *Client) get(ctx context.Context, path, rawQuery string) (json.RawMessage, error) {
	var apiErr struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetError(&apiErr).
		Get(target)
	if err != nil {
		return nil, fmt.Errorf("call scraping api %s: %w", path, err)
	}

	if res.IsError() {
		detail := apiErr.Error
		if len(apiErr.Detail) > 0 {
			var s string
			if json.Unmarshal(apiErr.Detail, &s) == nil {
				detail = s
			} else {
				detail = string(apiErr.Detail)
			}
		}
		c.logger.WithFields(logrus.Fields{"endpoint": path, "status": res.StatusCode()}).Warn("Scraping API rejected request")
		return nil, &APIError{Endpoint: path, Status: res.StatusCode(), Detail: detail}
	}

	body := res.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w (%s)", ErrInvalidResponse, path)
	}
	return json.RawMessage(body), nil
}
