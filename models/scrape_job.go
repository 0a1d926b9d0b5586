package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JobKind distinguishes a site scrape from a Google-search derived job.
type JobKind string

const (
	JobKindSiteScrape JobKind = "site_scrape"
	JobKindSearch     JobKind = "search"
)

// DeriveJobKind resolves the kind of a stored job. Older documents carry no kind, in which
// case a search query marks a search job.
func DeriveJobKind(explicit string, searchQuery *string) JobKind {
	switch JobKind(explicit) {
	case JobKindSiteScrape, JobKindSearch:
		return JobKind(explicit)
	}
	if searchQuery != nil {
		return JobKindSearch
	}
	return JobKindSiteScrape
}

// ScrapeJobResult is one completed scraping or search job as produced by the scraping API.
// The dashboard never mutates these records.
type ScrapeJobResult struct {
	ID                string     `json:"id,omitempty"`
	Title             string     `json:"title"`
	Kind              JobKind    `json:"kind"`
	StartURLs         []string   `json:"start_urls"`
	Keywords          []string   `json:"keywords,omitempty"` // Absent on legacy records
	Results           ResultSet  `json:"results"`
	TotalCoincidences int        `json:"total_coincidences"` // As stored, never recomputed
	ScrapedSites      int        `json:"scraped_sites"`
	DurationSeconds   float64    `json:"duration_seconds"`
	LastScan          *time.Time `json:"last_scan,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	SearchQuery       *string    `json:"search_query,omitempty"`
}

// Timestamp is the instant used for recency ordering: created_at, else last_scan.
func (j ScrapeJobResult) Timestamp() time.Time {
	if j.CreatedAt != nil {
		return *j.CreatedAt
	}
	if j.LastScan != nil {
		return *j.LastScan
	}
	return time.Time{}
}

// Vocabulary returns the keywords used as filter conditions and export columns.
// The stored keyword list wins; legacy records fall back to the first successful entry.
func (j ScrapeJobResult) Vocabulary() []string {
	if len(j.Keywords) > 0 {
		return append([]string(nil), j.Keywords...)
	}
	for _, entry := range j.Results {
		if !entry.IsError() {
			return entry.Keywords.Keywords()
		}
	}
	return []string{}
}

// RecountCoincidences counts found keywords across all success entries.
func (j ScrapeJobResult) RecountCoincidences() int {
	total := 0
	for _, entry := range j.Results {
		if !entry.IsError() {
			total += entry.MatchCount()
		}
	}
	return total
}

// SuccessCount and ErrorCount split the entries by kind.
func (j ScrapeJobResult) SuccessCount() int {
	return len(j.Results) - j.ErrorCount()
}

func (j ScrapeJobResult) ErrorCount() int {
	count := 0
	for _, entry := range j.Results {
		if entry.IsError() {
			count++
		}
	}
	return count
}

// MatchesText reports whether needle occurs, case-insensitively, in the title or a seed URL.
func (j ScrapeJobResult) MatchesText(needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(j.Title), needle) {
		return true
	}
	for _, u := range j.StartURLs {
		if strings.Contains(strings.ToLower(u), needle) {
			return true
		}
	}
	return false
}

// scrapeJobWire is the loose shape accepted from the store and the scraping API.
type scrapeJobWire struct {
	ID                json.RawMessage `json:"id"`
	MongoID           json.RawMessage `json:"_id"`
	Title             string          `json:"title"`
	Kind              string          `json:"kind"`
	StartURLs         []string        `json:"start_urls"`
	StartURL          string          `json:"start_url"`
	Keywords          []string        `json:"keywords"`
	Results           ResultSet       `json:"results"`
	TotalCoincidences float64         `json:"total_coincidences"`
	ScrapedSites      float64         `json:"scraped_sites"`
	DurationSeconds   float64         `json:"duration_seconds"`
	LastScan          json.RawMessage `json:"last_scan"`
	CreatedAt         json.RawMessage `json:"created_at"`
	SearchQuery       *string         `json:"search_query"`
}

// UnmarshalJSON decodes both stored documents (untagged results, implicit kind, loose
// timestamps) and this package's own encoding.
func (j *ScrapeJobResult) UnmarshalJSON(data []byte) error {
	var wire scrapeJobWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	id := decodeID(wire.ID)
	if id == "" {
		id = decodeID(wire.MongoID)
	}

	startURLs := wire.StartURLs
	if len(startURLs) == 0 && wire.StartURL != "" {
		startURLs = []string{wire.StartURL}
	}

	lastScan, err := decodeTimestamp(wire.LastScan)
	if err != nil {
		return fmt.Errorf("last_scan: %w", err)
	}
	createdAt, err := decodeTimestamp(wire.CreatedAt)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}

	*j = ScrapeJobResult{
		ID:                id,
		Title:             wire.Title,
		Kind:              DeriveJobKind(wire.Kind, wire.SearchQuery),
		StartURLs:         startURLs,
		Keywords:          wire.Keywords,
		Results:           wire.Results,
		TotalCoincidences: int(wire.TotalCoincidences),
		ScrapedSites:      int(wire.ScrapedSites),
		DurationSeconds:   wire.DurationSeconds,
		LastScan:          lastScan,
		CreatedAt:         createdAt,
		SearchQuery:       wire.SearchQuery,
	}
	return nil
}

// decodeID accepts a string, a number or an extended-JSON {"$oid": "..."} object.
func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &oid); err == nil && oid.OID != "" {
		return oid.OID
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeTimestamp accepts a timestamp string or an extended-JSON date, either
// {"$date": "<RFC 3339>"} or {"$date": {"$numberLong": "<unix millis>"}}.
func decodeTimestamp(raw json.RawMessage) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseTimestamp(s)
	}

	var ext struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(raw, &ext); err != nil || len(ext.Date) == 0 {
		return nil, fmt.Errorf("unrecognized timestamp %s", truncate(string(raw), 48))
	}
	if err := json.Unmarshal(ext.Date, &s); err == nil {
		return ParseTimestamp(s)
	}
	var millis struct {
		NumberLong string `json:"$numberLong"`
	}
	if err := json.Unmarshal(ext.Date, &millis); err == nil && millis.NumberLong != "" {
		ms, err := strconv.ParseInt(millis.NumberLong, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("timestamp millis %q: %w", millis.NumberLong, err)
		}
		t := time.UnixMilli(ms).UTC()
		return &t, nil
	}
	var n int64
	if err := json.Unmarshal(ext.Date, &n); err == nil {
		t := time.UnixMilli(n).UTC()
		return &t, nil
	}
	return nil, fmt.Errorf("unrecognized timestamp %s", truncate(string(raw), 48))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses the timestamp formats written by the scraping API. Values without
// a zone are read as UTC. An empty string yields nil.
func ParseTimestamp(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", value)
}
