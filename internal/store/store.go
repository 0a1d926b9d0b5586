// Package store reads completed job documents written by the scraping API.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"buffcomply/dashboard/models"
)

var ErrJobNotFound = errors.New("job not found")

const (
	DefaultDatabase   = "scraper_db"
	DefaultCollection = "scrape_results"
	MaxListLimit      = 100
)

// DocumentStore is the read-only source of job documents.
type DocumentStore interface {
	// LatestJobs returns up to limit jobs, newest first.
	LatestJobs(ctx context.Context, limit int) ([]models.ScrapeJobResult, error)
	GetJob(ctx context.Context, id string) (models.ScrapeJobResult, error)
	Close(ctx context.Context) error
}

// Options select and configure a backend.
type Options struct {
	URI        string
	Database   string
	Collection string
	APIKey     string
}

// Open connects to the backend named by the URI scheme: mongodb:// and mongodb+srv://
// for MongoDB, http:// and https:// for a Supabase PostgREST endpoint.
func Open(ctx context.Context, opts Options, logger *logrus.Logger) (DocumentStore, error) {
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}

	switch scheme := schemeOf(opts.URI); scheme {
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, opts, logger)
	case "http", "https":
		return OpenPostgrest(opts, logger)
	case "":
		return nil, errors.New("store URI is empty")
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", scheme)
	}
}

func schemeOf(uri string) string {
	i := strings.Index(uri, "://")
	if i < 0 {
		return ""
	}
	return strings.ToLower(uri[:i])
}

// clampLimit keeps list sizes within 1..MaxListLimit.
func clampLimit(limit int) int {
	if limit < 1 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
