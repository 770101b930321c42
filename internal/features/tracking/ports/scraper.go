package ports

import (
	"context"
	"time"

	"gel-tracker/internal/features/tracking/domain"
)

// Scraper resolves a tracking code into a result.
// This is the primary port used by the HTTP handler and the CLI.
type Scraper interface {
	RunScrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResult, error)
}

// ResultCache stores completed results keyed by tracking code.
type ResultCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, trackingCode string) (*domain.ScrapeResult, error)
	Save(ctx context.Context, trackingCode string, result *domain.ScrapeResult, ttl time.Duration) error
}

// ScrapeObserver receives pipeline outcomes, typically for metrics.
type ScrapeObserver interface {
	ObserveScrape(outcome string, duration time.Duration)
	ObserveStageFailure(stage string)
	ObserveCacheHit()
}
