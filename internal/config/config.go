package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/teemow/inboxgroups/internal/cluster"
)

// Config holds the application configuration for email processing and
// persistence. All fields can be overridden via environment variables,
// optionally loaded from a .env file.
type Config struct {
	// MaxEmails caps how many emails one clustering run fetches and
	// processes (MAX_EMAILS, default 200).
	MaxEmails int

	// DefaultClusters pins the cluster count when > 0; 0 selects the
	// count adaptively per batch (DEFAULT_CLUSTERS, default 0).
	DefaultClusters int

	// TFIDFMaxFeatures bounds the learned vocabulary size
	// (TFIDF_MAX_FEATURES, default 1000).
	TFIDFMaxFeatures int

	// TFIDFMinDF is the minimum document frequency for vocabulary terms
	// (TFIDF_MIN_DF, default 2).
	TFIDFMinDF int

	// TFIDFMaxDF is the maximum document frequency ratio for vocabulary
	// terms (TFIDF_MAX_DF, default 0.8).
	TFIDFMaxDF float64

	// TFIDFNGramMin and TFIDFNGramMax bound the n-gram sizes in the
	// vocabulary (TFIDF_NGRAM_MIN/TFIDF_NGRAM_MAX, defaults 1 and 2).
	TFIDFNGramMin int
	TFIDFNGramMax int

	// DatabasePath is the sqlite database location
	// (DATABASE_PATH, default ./data/cache/emails.db).
	DatabasePath string
}

// Load reads configuration from the environment, first loading a .env
// file if one exists in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (Config, error) {
	cfg := Config{
		MaxEmails:        cluster.DefaultMaxEmails,
		DefaultClusters:  0,
		TFIDFMaxFeatures: 1000,
		TFIDFMinDF:       2,
		TFIDFMaxDF:       0.8,
		TFIDFNGramMin:    cluster.DefaultNGramMin,
		TFIDFNGramMax:    cluster.DefaultNGramMax,
		DatabasePath:     filepath.Join("data", "cache", "emails.db"),
	}

	var err error
	if cfg.MaxEmails, err = intEnv("MAX_EMAILS", cfg.MaxEmails); err != nil {
		return Config{}, err
	}
	if cfg.DefaultClusters, err = intEnv("DEFAULT_CLUSTERS", cfg.DefaultClusters); err != nil {
		return Config{}, err
	}
	if cfg.TFIDFMaxFeatures, err = intEnv("TFIDF_MAX_FEATURES", cfg.TFIDFMaxFeatures); err != nil {
		return Config{}, err
	}
	if cfg.TFIDFMinDF, err = intEnv("TFIDF_MIN_DF", cfg.TFIDFMinDF); err != nil {
		return Config{}, err
	}
	if cfg.TFIDFMaxDF, err = floatEnv("TFIDF_MAX_DF", cfg.TFIDFMaxDF); err != nil {
		return Config{}, err
	}
	if cfg.TFIDFNGramMin, err = intEnv("TFIDF_NGRAM_MIN", cfg.TFIDFNGramMin); err != nil {
		return Config{}, err
	}
	if cfg.TFIDFNGramMax, err = intEnv("TFIDF_NGRAM_MAX", cfg.TFIDFNGramMax); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxEmails <= 0 {
		return fmt.Errorf("MAX_EMAILS must be positive, got %d", c.MaxEmails)
	}
	if c.DefaultClusters < 0 {
		return fmt.Errorf("DEFAULT_CLUSTERS must not be negative, got %d", c.DefaultClusters)
	}
	if c.TFIDFMaxFeatures <= 0 {
		return fmt.Errorf("TFIDF_MAX_FEATURES must be positive, got %d", c.TFIDFMaxFeatures)
	}
	if c.TFIDFMinDF < 1 {
		return fmt.Errorf("TFIDF_MIN_DF must be at least 1, got %d", c.TFIDFMinDF)
	}
	if c.TFIDFMaxDF <= 0 || c.TFIDFMaxDF > 1 {
		return fmt.Errorf("TFIDF_MAX_DF must be in (0, 1], got %f", c.TFIDFMaxDF)
	}
	if c.TFIDFNGramMin < 1 {
		return fmt.Errorf("TFIDF_NGRAM_MIN must be at least 1, got %d", c.TFIDFNGramMin)
	}
	if c.TFIDFNGramMax < c.TFIDFNGramMin {
		return fmt.Errorf("TFIDF_NGRAM_MAX must be at least TFIDF_NGRAM_MIN, got %d < %d", c.TFIDFNGramMax, c.TFIDFNGramMin)
	}
	return nil
}

// PipelineConfig translates the configuration into the clustering
// pipeline's knobs.
func (c Config) PipelineConfig() cluster.PipelineConfig {
	return cluster.PipelineConfig{
		MaxEmails: c.MaxEmails,
		Clusters:  c.DefaultClusters,
		Vectorizer: cluster.VectorizerConfig{
			MaxFeatures: c.TFIDFMaxFeatures,
			MinDF:       c.TFIDFMinDF,
			MaxDF:       c.TFIDFMaxDF,
			NGramMin:    c.TFIDFNGramMin,
			NGramMax:    c.TFIDFNGramMax,
		},
	}
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return parsed, nil
}

func floatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return parsed, nil
}
