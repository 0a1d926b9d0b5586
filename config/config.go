package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the runtime configuration of the dashboard server and CLI.
type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	StoreURI        string `envconfig:"STORE_URI" default:"mongodb://localhost:27017"`
	StoreDatabase   string `envconfig:"STORE_DATABASE" default:"scraper_db"`
	StoreCollection string `envconfig:"STORE_COLLECTION" default:"scrape_results"`
	SupabaseKey     string `envconfig:"SUPABASE_SERVICE_KEY" default:""`
	ListLimit       int    `envconfig:"LIST_LIMIT" default:"100"`

	ComplyAPIURL     string        `envconfig:"COMPLY_API_URL" default:"https://api.buffcomply.com"`
	ComplyAPITimeout time.Duration `envconfig:"COMPLY_API_TIMEOUT" default:"5m"`

	PresetsFile string `envconfig:"PRESETS_FILE" default:"presets.json"`

	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LoginDelay      time.Duration `envconfig:"LOGIN_DELAY" default:"1500ms"`
	CORSOrigins     string        `envconfig:"CORS_ORIGINS" default:"*"`
	DefaultLanguage string        `envconfig:"DEFAULT_LANGUAGE" default:"es"`
}

// Load reads .env files, then the environment, into a Config.
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if cfg.ListLimit < 1 || cfg.ListLimit > 100 {
		return nil, fmt.Errorf("LIST_LIMIT must be within 1..100, got %d", cfg.ListLimit)
	}
	return cfg, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local and then .env.
// Variables already present in the environment are never overridden.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env.local: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
