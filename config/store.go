package config

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"buffcomply/dashboard/internal/store"
)

// OpenStore connects the document store named by STORE_URI.
func OpenStore(ctx context.Context, cfg *Config, logger *logrus.Logger) (store.DocumentStore, error) {
	if strings.HasPrefix(cfg.StoreURI, "http") && cfg.SupabaseKey == "" {
		logger.Warn("STORE_URI points at Supabase but SUPABASE_SERVICE_KEY is not set")
	}
	return store.Open(ctx, store.Options{
		URI:        cfg.StoreURI,
		Database:   cfg.StoreDatabase,
		Collection: cfg.StoreCollection,
		APIKey:     cfg.SupabaseKey,
	}, logger)
}
