package tool

import (
	"context"
	"time"

	"webscout/internal/domain"
)

// Scrape method identifiers on the wire.
const (
	MethodStatic   = "static"
	MethodRendered = "rendered"
)

// FetchOptions carries per-call fetch settings. WaitTime is only
// meaningful for the rendered strategy.
type FetchOptions struct {
	WaitTime time.Duration
}

// Fetcher retrieves one page and normalizes it into a ScrapeOutcome.
// Implementations never return an error: every failure is folded into
// an error outcome so one bad URL cannot abort a batch.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts FetchOptions) domain.ScrapeOutcome
	Method() string
}
