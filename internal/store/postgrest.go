package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"buffcomply/dashboard/models"
)

// PostgrestStore reads job rows from a Supabase table. JSONB columns do not keep
// object key order, so entries come back in the order PostgreSQL stores them.
type PostgrestStore struct {
	client *supa.Client
	table  string
	logger *logrus.Logger
}

func OpenPostgrest(opts Options, logger *logrus.Logger) (*PostgrestStore, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("a service key is required for %s", opts.URI)
	}
	client, err := supa.NewClient(opts.URI, opts.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}

	logger.WithField("table", opts.Collection).Info("Supabase document store initialized")
	return &PostgrestStore{client: client, table: opts.Collection, logger: logger}, nil
}

func (s *PostgrestStore) LatestJobs(ctx context.Context, limit int) ([]models.ScrapeJobResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := s.client.From(s.table).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(clampLimit(limit), "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", s.table, err)
	}
	return decodeRows(body)
}

func (s *PostgrestStore) GetJob(ctx context.Context, id string) (models.ScrapeJobResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ScrapeJobResult{}, err
	}
	body, _, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return models.ScrapeJobResult{}, fmt.Errorf("select %s id=%s: %w", s.table, id, err)
	}

	jobs, err := decodeRows(body)
	if err != nil {
		return models.ScrapeJobResult{}, err
	}
	if len(jobs) == 0 {
		return models.ScrapeJobResult{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return jobs[0], nil
}

func (s *PostgrestStore) Close(ctx context.Context) error { return nil }

func decodeRows(body []byte) ([]models.ScrapeJobResult, error) {
	var jobs []models.ScrapeJobResult
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("decode rows (%d bytes): %w", len(body), err)
	}
	if jobs == nil {
		jobs = []models.ScrapeJobResult{}
	}
	return jobs, nil
}
