package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"webscout/internal/domain"
	"webscout/internal/infra/tracer"
)

// defaultNumResults is used when a query config omits num_results.
const defaultNumResults = 5

// missingQueryKey is the aggregation key for items with no usable query.
const missingQueryKey = "<missing_query>"

// SearchTool runs batched web searches against the configured metasearch
// backend. Each query produces its own outcome; one failing query never
// aborts the rest of the batch.
type SearchTool struct {
	backend SearchBackend
	logger  *slog.Logger
}

// NewSearchTool creates the search_web tool.
func NewSearchTool(backend SearchBackend, logger *slog.Logger) *SearchTool {
	return &SearchTool{backend: backend, logger: logger}
}

type searchQueryConfig struct {
	Query      string `json:"query"`
	NumResults *int   `json:"num_results"`
}

type searchParams struct {
	QueryConfigs []searchQueryConfig `json:"query_configs"`
}

func (t *SearchTool) Name() string { return "search_web" }

func (t *SearchTool) Description() string {
	return "Search the web via a SearXNG instance. Accepts a batch of queries and returns a mapping from query to its results."
}

func (t *SearchTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query_configs": {
					"type": "array",
					"description": "One entry per search query to run",
					"items": {
						"type": "object",
						"properties": {
							"query": {
								"type": "string",
								"description": "Search query text"
							},
							"num_results": {
								"type": "integer",
								"description": "Number of results to return (default 5)"
							}
						}
					}
				}
			},
			"required": ["query_configs"]
		}`),
	}
}

func (t *SearchTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "search_web", t.logger, params,
		func(ctx context.Context, span trace.Span, p searchParams) (any, error) {
			span.SetAttributes(tracer.IntAttr("search.batch_size", len(p.QueryConfigs)))

			batch := domain.NewBatchOutcomes()
			for _, qc := range p.QueryConfigs {
				query := strings.TrimSpace(qc.Query)
				if err := RequireField("query", query); err != nil {
					batch.Set(missingQueryKey, domain.SearchError(err.Error()))
					continue
				}

				numResults := defaultNumResults
				if qc.NumResults != nil {
					numResults = *qc.NumResults
				}

				items, err := t.backend.Search(ctx, query, numResults)
				if err != nil {
					t.logger.Warn("search query failed", "query", query, "error", err)
					batch.Set(query, domain.SearchError(err.Error()))
					continue
				}
				if items == nil {
					items = []domain.SearchResultItem{}
				}

				batch.Set(query, domain.SearchOutcome{
					Status:  domain.StatusSuccess,
					Count:   len(items),
					Results: items,
				})
			}
			return batch, nil
		})
}
