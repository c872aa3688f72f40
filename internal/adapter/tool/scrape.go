package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"webscout/internal/domain"
	"webscout/internal/infra/tracer"
)

// Rendered-fetch wait bounds, in seconds.
const (
	defaultWaitTime = 3
	maxWaitTime     = 30
)

// missingURLKey is the aggregation key for items with no usable URL.
const missingURLKey = "<missing_url>"

// ScrapeTool fetches batches of pages, dispatching each URL to the
// static or rendered strategy per its config.
type ScrapeTool struct {
	static   Fetcher
	rendered Fetcher
	logger   *slog.Logger
}

// NewScrapeTool creates the scrape_pages tool.
func NewScrapeTool(static, rendered Fetcher, logger *slog.Logger) *ScrapeTool {
	return &ScrapeTool{static: static, rendered: rendered, logger: logger}
}

type scrapeConfig struct {
	URL      string `json:"url"`
	Method   string `json:"method"`
	WaitTime *int   `json:"wait_time"`
}

type scrapeParams struct {
	Configs []scrapeConfig `json:"configs"`
}

func (t *ScrapeTool) Name() string { return "scrape_pages" }

func (t *ScrapeTool) Description() string {
	return "Scrape web pages and extract their readable text. Supports a plain HTTP fetch (static) or a headless-browser fetch (rendered) for JavaScript-heavy sites."
}

func (t *ScrapeTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"configs": {
					"type": "array",
					"description": "One entry per page to scrape",
					"items": {
						"type": "object",
						"properties": {
							"url": {
								"type": "string",
								"description": "Page URL to fetch"
							},
							"method": {
								"type": "string",
								"enum": ["static", "rendered"],
								"description": "Fetch strategy (default static)"
							},
							"wait_time": {
								"type": "integer",
								"minimum": 0,
								"maximum": 30,
								"description": "Seconds to wait for dynamic content after render (default 3, rendered only)"
							}
						}
					}
				}
			},
			"required": ["configs"]
		}`),
	}
}

func (t *ScrapeTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "scrape_pages", t.logger, params,
		func(ctx context.Context, span trace.Span, p scrapeParams) (any, error) {
			span.SetAttributes(tracer.IntAttr("scrape.batch_size", len(p.Configs)))

			batch := domain.NewBatchOutcomes()
			for _, cfg := range p.Configs {
				url := strings.TrimSpace(cfg.URL)
				if err := RequireField("url", url); err != nil {
					batch.Set(missingURLKey, domain.ScrapeError("", err.Error()))
					continue
				}

				method := cfg.Method
				if method == "" {
					method = MethodStatic
				}
				if err := ValidateEnum("method", method, MethodStatic, MethodRendered); err != nil {
					batch.Set(url, domain.ScrapeError(method, err.Error()))
					continue
				}

				batch.Set(url, t.scrapeOne(ctx, url, method, cfg.WaitTime))
			}
			return batch, nil
		})
}

// scrapeOne dispatches a single URL to its fetch strategy. The dynamic
// wait only applies to the rendered method; for static it is forced to
// zero regardless of the request.
func (t *ScrapeTool) scrapeOne(ctx context.Context, url, method string, waitTime *int) domain.ScrapeOutcome {
	fetcher := t.static
	opts := FetchOptions{}

	if method == MethodRendered {
		fetcher = t.rendered
		wait := defaultWaitTime
		if waitTime != nil {
			wait = *waitTime
		}
		if wait < 0 {
			wait = 0
		}
		if wait > maxWaitTime {
			wait = maxWaitTime
		}
		opts.WaitTime = time.Duration(wait) * time.Second
	}

	return fetcher.Fetch(ctx, url, opts)
}
