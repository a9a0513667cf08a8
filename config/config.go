package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// DefaultPageSize is the items_page limit used when none is configured.
	// The API caps a page at 500 items.
	DefaultPageSize = 200
	MaxPageSize     = 500

	DefaultBatchSize   = 200
	DefaultWorkerCount = 4
)

// Config holds the runtime configuration for a sync run.
type Config struct {
	APIKey       string
	DatabaseURL  string
	PipelineFile string
	PageSize     int
	BatchSize    int
	WorkerCount  int
	Debug        bool
	Verbose      bool
	Upsert       bool
	NoTruncate   bool
}

// Load fills unset fields from the environment and applies defaults. A .env
// file is read first when present; deployments that rely on plain environment
// variables work without one, so a missing file is not an error. Values
// already set on cfg (from CLI flags) take precedence.
func Load(cfg *Config) error {
	_ = godotenv.Load()

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("MONDAY_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if cfg.PageSize == 0 {
		if v := os.Getenv("MONDAY_PAGE_SIZE"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid MONDAY_PAGE_SIZE %q: %w", v, err)
			}
			cfg.PageSize = n
		} else {
			cfg.PageSize = DefaultPageSize
		}
	}
	if cfg.PageSize < 1 || cfg.PageSize > MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, cfg.PageSize)
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}

	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.WorkerCount < 1 {
		return fmt.Errorf("worker count must be positive, got %d", cfg.WorkerCount)
	}

	return nil
}
